package storage

import "errors"

// Common storage errors
var (
	// ErrSceneNotFound indicates that scene was not found or is deleted
	ErrSceneNotFound = errors.New("scene not found")

	// ErrNotEnoughRights indicates that caller has no access to the scene
	ErrNotEnoughRights = errors.New("not enough rights")

	// ErrFileNotFound indicates that scene file was not found
	ErrFileNotFound = errors.New("file not found")

	// ErrFileAlreadyExists indicates that file with this id already exists for the scene
	ErrFileAlreadyExists = errors.New("file already exists")

	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")
)
