// Package collection is the persistence and session layer of a personal film
// collection.
//
// # Stores
//
// Every entity kind has a store implementing [EntityStore]:
//
//	type EntityStore[T any] interface {
//	    GetAll(ctx context.Context) ([]T, error)
//	    GetByID(ctx context.Context, id int64) (T, error)
//	    Add(ctx context.Context, e *T) error
//	    Update(ctx context.Context, e *T) error
//	    Delete(ctx context.Context, e *T) error
//	}
//
// [FilmStore], [UserStore] and [CopyStore] share one SQL implementation and
// differ only in their column mapping. [CopyStore] adds GetByOwner and
// [UserStore] adds ValidateCredentials.
//
// A missing row is not an error: GetByID returns a zero entity whose IsZero
// method reports true, and [Find] exposes the same result as a found flag.
// Faults raised by the database are returned as *[StorageError] and match
// [ErrStorage] with errors.Is.
//
// # Credentials
//
// ValidateCredentials compares username and password byte-for-byte against
// the stored columns. Passwords are therefore kept in clear text unless the
// manager runs with the bcrypt [Authenticator], which stores digests and
// compares them in Go instead. New deployments should use the bcrypt mode.
//
// # Sessions
//
// A [Session] is a value owned by the caller. It holds the authenticated user,
// the copies that user owns and the current selection. [CollectionManager]
// wires the stores and the session together for the CLI.
package collection
