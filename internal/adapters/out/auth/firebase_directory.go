// internal/adapters/out/auth/firebase_directory.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"clubhouse/internal/application/usecase"
)

// FirebaseDirectory implements usecase.AccountDirectory on top of Firebase
// Auth. Accounts that exist but have EmailVerified=false are the
// "not-yet-verified directory" the resolver consults; the password-reset and
// email-verification links are the external flows the lifecycle triggers
// instead of creating invitation rows.
type FirebaseDirectory struct {
	Client *fbauth.Client
}

func NewFirebaseDirectory(client *fbauth.Client) *FirebaseDirectory {
	return &FirebaseDirectory{Client: client}
}

// Compile-time check
var _ usecase.AccountDirectory = (*FirebaseDirectory)(nil)

func (d *FirebaseDirectory) LookupByEmail(ctx context.Context, email string) (usecase.DirectoryAccount, error) {
	if d.Client == nil {
		return usecase.DirectoryAccount{}, errors.New("firebase auth client is nil")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return usecase.DirectoryAccount{}, usecase.ErrAccountNotFound
	}

	u, err := d.Client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return usecase.DirectoryAccount{}, usecase.ErrAccountNotFound
		}
		return usecase.DirectoryAccount{}, fmt.Errorf("firebase GetUserByEmail: %w", err)
	}

	return usecase.DirectoryAccount{
		UID:           u.UID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
	}, nil
}

func (d *FirebaseDirectory) PasswordResetLink(ctx context.Context, email string) (string, error) {
	if d.Client == nil {
		return "", errors.New("firebase auth client is nil")
	}
	link, err := d.Client.PasswordResetLink(ctx, email)
	if err != nil {
		return "", fmt.Errorf("firebase PasswordResetLink: %w", err)
	}
	return link, nil
}

func (d *FirebaseDirectory) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	if d.Client == nil {
		return "", errors.New("firebase auth client is nil")
	}
	link, err := d.Client.EmailVerificationLink(ctx, email)
	if err != nil {
		return "", fmt.Errorf("firebase EmailVerificationLink: %w", err)
	}
	return link, nil
}
