package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Identity is what the service trusts from a verified Firebase ID token.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Verifier checks Firebase ID tokens and issues password reset links.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// NewFirebaseApp initialises the Firebase Admin SDK from the credentials JSON blob.
func NewFirebaseApp(ctx context.Context, credsJSON, projectID, bucket string) (*firebase.App, error) {
	if credsJSON == "" {
		return nil, errors.New("FIREBASE_CREDENTIALS_JSON must be set")
	}
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID must be set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: bucket,
	}, option.WithCredentialsJSON([]byte(credsJSON)))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}

type FirebaseVerifier struct {
	client    *fbauth.Client
	projectID string
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App, projectID string) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client, projectID: projectID}, nil
}

func (f *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if token.Audience != f.projectID {
		return nil, fmt.Errorf("%w: audience %q", ErrInvalidToken, token.Audience)
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: email not found in token", ErrInvalidToken)
	}
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)
	return &Identity{UID: token.UID, Email: email, Name: name, Picture: picture}, nil
}

func (f *FirebaseVerifier) PasswordResetLink(ctx context.Context, email string) (string, error) {
	return f.client.PasswordResetLink(ctx, email)
}
