package repository

import "context"

// Repository defines the app's persistence layer. Every backend stores a single
// collection of books, each embedding its notes.
type Repository interface {
	books
	// Ready reports whether the backend is connected and able to serve requests.
	Ready() bool
	// Close stops connection monitoring and releases the backend's resources.
	Close(ctx context.Context) error
}
