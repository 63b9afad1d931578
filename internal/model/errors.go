package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerAlreadyConnected = errors.New("player is already connected")

	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrAlreadyInRoom      = errors.New("player is already in room")
	ErrNotInRoom          = errors.New("not in a room")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameNotInProgress  = errors.New("game is not in progress")

	// Word errors
	ErrWordTooShort            = errors.New("word is too short")
	ErrVerificationUnavailable = errors.New("word verification unavailable")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")

	// Results errors
	ErrSummaryNotFound = errors.New("game summary not found")

	// Message errors
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownMessage   = errors.New("unknown message type")
)

// User-facing reasons attached to rejected word submissions
const (
	ReasonTooShort      = "too short"
	ReasonAlreadyUsed   = "already used"
	ReasonUnknownWord   = "not a known word"
	ReasonCannotSpell   = "cannot be spelled from the main word"
	ReasonCouldNotCheck = "could not verify"
)
