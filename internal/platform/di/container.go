// internal/platform/di/container.go
package di

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"

	"cloud.google.com/go/firestore"

	authadp "clubhouse/internal/adapters/out/auth"
	dbadp "clubhouse/internal/adapters/out/db"
	fs "clubhouse/internal/adapters/out/firestore"
	mailadp "clubhouse/internal/adapters/out/mail"

	uc "clubhouse/internal/application/usecase"

	auditdom "clubhouse/internal/domain/audit"
	invdom "clubhouse/internal/domain/invitation"
	memdom "clubhouse/internal/domain/member"

	appcfg "clubhouse/internal/infra/config"
	"clubhouse/internal/infra/database"
	firestoreinfra "clubhouse/internal/infra/firestore"
)

// ========================================
// Container (Firestore + Firebase edition)
// ========================================
type Container struct {
	// Infra
	Config       *appcfg.Config
	Firestore    *firestore.Client
	FirebaseApp  *firebase.App
	FirebaseAuth *firebaseauth.Client
	DB           *database.DB

	// Repositories
	InvitationRepo invdom.Repository
	MemberRepo     memdom.Repository
	AuditRecorder  auditdom.Recorder

	// Application-layer usecases
	InvitationUC  *uc.InvitationUsecase
	BulkInviteUC  *uc.BulkInviteUsecase
	GuestInviteUC *uc.GuestInviteUsecase
}

// NewContainer wires the whole invitation subsystem. Missing optional infra
// (Postgres audit DB, Secret Manager key) degrades with a WARN instead of
// failing boot; Firestore is mandatory.
func NewContainer(ctx context.Context) (*Container, error) {
	// 1. Config
	cfg := appcfg.Load()

	// 2. Initialize Firestore client
	fsw, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	if err != nil {
		return nil, err
	}
	fsClient := fsw.Client

	// 3. Initialize Firebase App & Auth
	var fbApp *firebase.App
	var fbAuth *firebaseauth.Client

	fbApp, err = firebase.NewApp(ctx, &firebase.Config{
		ProjectID: cfg.FirebaseProjectID,
	})
	if err != nil {
		log.Printf("[container] WARN: firebase app init failed: %v", err)
	} else {
		authClient, err := fbApp.Auth(ctx)
		if err != nil {
			log.Printf("[container] WARN: firebase auth init failed: %v", err)
		} else {
			fbAuth = authClient
			log.Printf("[container] Firebase Auth initialized")
		}
	}

	// 4. Optional Postgres for the audit event log
	var pg *database.DB
	var recorder auditdom.Recorder = dbadp.AuditLogRecorderLog{}
	if cfg.HasPostgres() {
		pg, err = database.NewConnection(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		if err != nil {
			log.Printf("[container] WARN: postgres init failed, audit falls back to log: %v", err)
			pg = nil
		} else {
			recorder = dbadp.NewAuditLogRepositoryPG(pg.Client)
		}
	}

	// 5. SendGrid API key: env first, Secret Manager second
	apiKey := cfg.SendGridAPIKey
	if apiKey == "" && cfg.SendGridAPIKeySecret != "" {
		apiKey, err = resolveSecretSM(ctx, cfg.FirestoreProjectID, cfg.SendGridAPIKeySecret)
		if err != nil {
			log.Printf("[container] WARN: sendgrid key from secret manager failed: %v", err)
		}
	}

	// 6. Outbound adapters
	invitationRepo := fs.NewInvitationRepositoryFS(fsClient)
	memberRepo := fs.NewMemberRepositoryFS(fsClient)
	directory := authadp.NewFirebaseDirectory(fbAuth)
	mailer := mailadp.NewInvitationMailerWithSendGrid(apiKey, cfg.MailFrom, cfg.MailFromName, cfg.AppOrigin)

	// 7. Application-layer usecases
	resolver := uc.NewAccountResolver(memberRepo, invitationRepo, directory)
	invitationUC := uc.NewInvitationUsecase(resolver, invitationRepo, directory, mailer, recorder)
	bulkUC := uc.NewBulkInviteUsecase(invitationUC, recorder, cfg.BulkSendDelay)
	guestUC := uc.NewGuestInviteUsecase(memberRepo, invitationRepo, invitationUC)

	return &Container{
		Config:         cfg,
		Firestore:      fsClient,
		FirebaseApp:    fbApp,
		FirebaseAuth:   fbAuth,
		DB:             pg,
		InvitationRepo: invitationRepo,
		MemberRepo:     memberRepo,
		AuditRecorder:  recorder,
		InvitationUC:   invitationUC,
		BulkInviteUC:   bulkUC,
		GuestInviteUC:  guestUC,
	}, nil
}

// Close releases held clients.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil {
			log.Printf("[container] WARN: firestore close: %v", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("[container] WARN: postgres close: %v", err)
		}
	}
}
