// internal/adapters/out/firestore/member_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	memdom "clubhouse/internal/domain/member"
)

// MemberRepositoryFS is a Firestore-based implementation of
// memdom.Repository. Uses the "members" collection. The invitation subsystem
// consults this directory; member CRUD beyond guest creation lives
// elsewhere in the application.
type MemberRepositoryFS struct {
	Client *firestore.Client
}

func NewMemberRepositoryFS(client *firestore.Client) *MemberRepositoryFS {
	return &MemberRepositoryFS{Client: client}
}

func (r *MemberRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("members")
}

// Compile-time check
var _ memdom.Repository = (*MemberRepositoryFS)(nil)

// ========================
// Queries
// ========================

func (r *MemberRepositoryFS) GetByID(ctx context.Context, id string) (memdom.Member, error) {
	if r.Client == nil {
		return memdom.Member{}, errors.New("firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return memdom.Member{}, memdom.ErrNotFound
	}

	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return memdom.Member{}, memdom.ErrNotFound
		}
		return memdom.Member{}, err
	}

	var m memdom.Member
	if err := doc.DataTo(&m); err != nil {
		return memdom.Member{}, err
	}
	if m.ID == "" {
		m.ID = doc.Ref.ID
	}
	return m, nil
}

func (r *MemberRepositoryFS) GetByEmail(ctx context.Context, email string) (memdom.Member, error) {
	if r.Client == nil {
		return memdom.Member{}, errors.New("firestore client is nil")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return memdom.Member{}, memdom.ErrNotFound
	}

	q := r.col().Where("email", "==", email).Limit(1)
	it := q.Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return memdom.Member{}, memdom.ErrNotFound
	}
	if err != nil {
		return memdom.Member{}, err
	}

	var m memdom.Member
	if err := doc.DataTo(&m); err != nil {
		return memdom.Member{}, err
	}
	if m.ID == "" {
		m.ID = doc.Ref.ID
	}
	return m, nil
}

// ========================
// Writes
// ========================

// CreateGuest persists a guest placeholder row with a fresh document ID.
func (r *MemberRepositoryFS) CreateGuest(ctx context.Context, m memdom.Member) (memdom.Member, error) {
	if r.Client == nil {
		return memdom.Member{}, errors.New("firestore client is nil")
	}
	if m.Status != memdom.StatusGuest {
		return memdom.Member{}, memdom.ErrInvalidStatus
	}

	ref := r.col().NewDoc()
	m.ID = ref.ID

	if _, err := ref.Create(ctx, m); err != nil {
		return memdom.Member{}, err
	}
	return m, nil
}
