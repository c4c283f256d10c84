package usecase

import (
	"context"
	"fmt"
	"time"

	auditdom "clubhouse/internal/domain/audit"
	invdom "clubhouse/internal/domain/invitation"
	memdom "clubhouse/internal/domain/member"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
}

// ------------------------------------------------------------------
// fake invitation store: enforces the per-email pending uniqueness the
// real Firestore adapter provides, so the check-then-act race is testable.
// ------------------------------------------------------------------

type fakeInvitationRepo struct {
	byID    map[string]invdom.Invitation
	pending map[string]string // normalized email -> invitation ID
	nextID  int

	createErr error
	updateErr error
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		byID:    make(map[string]invdom.Invitation),
		pending: make(map[string]string),
	}
}

func (f *fakeInvitationRepo) CreatePending(_ context.Context, inv invdom.Invitation) (invdom.Invitation, error) {
	if f.createErr != nil {
		return invdom.Invitation{}, f.createErr
	}
	if _, ok := f.pending[inv.Email]; ok {
		return invdom.Invitation{}, invdom.ErrConflict
	}
	f.nextID++
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.byID[inv.ID] = inv
	f.pending[inv.Email] = inv.ID
	return inv, nil
}

func (f *fakeInvitationRepo) GetByID(_ context.Context, id string) (invdom.Invitation, error) {
	inv, ok := f.byID[id]
	if !ok {
		return invdom.Invitation{}, invdom.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvitationRepo) GetByToken(_ context.Context, token string) (invdom.Invitation, error) {
	for _, inv := range f.byID {
		if inv.Token == token {
			return inv, nil
		}
	}
	return invdom.Invitation{}, invdom.ErrNotFound
}

func (f *fakeInvitationRepo) GetPendingByEmail(_ context.Context, email string) (invdom.Invitation, error) {
	id, ok := f.pending[email]
	if !ok {
		return invdom.Invitation{}, invdom.ErrNotFound
	}
	inv := f.byID[id]
	if inv.Status != invdom.StatusPending {
		return invdom.Invitation{}, invdom.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvitationRepo) Update(_ context.Context, inv invdom.Invitation) (invdom.Invitation, error) {
	if f.updateErr != nil {
		return invdom.Invitation{}, f.updateErr
	}
	if _, ok := f.byID[inv.ID]; !ok {
		return invdom.Invitation{}, invdom.ErrNotFound
	}
	f.byID[inv.ID] = inv
	if inv.Status != invdom.StatusPending {
		delete(f.pending, inv.Email)
	}
	return inv, nil
}

// ------------------------------------------------------------------
// fake member directory
// ------------------------------------------------------------------

type fakeMemberRepo struct {
	byEmail map[string]memdom.Member
	byID    map[string]memdom.Member
	nextID  int

	createErr error
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		byEmail: make(map[string]memdom.Member),
		byID:    make(map[string]memdom.Member),
	}
}

func (f *fakeMemberRepo) add(m memdom.Member) {
	f.byEmail[m.Email] = m
	f.byID[m.ID] = m
}

func (f *fakeMemberRepo) GetByEmail(_ context.Context, email string) (memdom.Member, error) {
	m, ok := f.byEmail[email]
	if !ok {
		return memdom.Member{}, memdom.ErrNotFound
	}
	return m, nil
}

func (f *fakeMemberRepo) GetByID(_ context.Context, id string) (memdom.Member, error) {
	m, ok := f.byID[id]
	if !ok {
		return memdom.Member{}, memdom.ErrNotFound
	}
	return m, nil
}

func (f *fakeMemberRepo) CreateGuest(_ context.Context, m memdom.Member) (memdom.Member, error) {
	if f.createErr != nil {
		return memdom.Member{}, f.createErr
	}
	f.nextID++
	m.ID = fmt.Sprintf("guest-%d", f.nextID)
	f.add(m)
	return m, nil
}

// ------------------------------------------------------------------
// fake auth directory
// ------------------------------------------------------------------

type fakeDirectory struct {
	accounts map[string]DirectoryAccount

	resetLinks  []string // emails a reset link was built for
	verifyLinks []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{accounts: make(map[string]DirectoryAccount)}
}

func (f *fakeDirectory) LookupByEmail(_ context.Context, email string) (DirectoryAccount, error) {
	a, ok := f.accounts[email]
	if !ok {
		return DirectoryAccount{}, ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeDirectory) PasswordResetLink(_ context.Context, email string) (string, error) {
	f.resetLinks = append(f.resetLinks, email)
	return "https://auth.test/reset/" + email, nil
}

func (f *fakeDirectory) EmailVerificationLink(_ context.Context, email string) (string, error) {
	f.verifyLinks = append(f.verifyLinks, email)
	return "https://auth.test/verify/" + email, nil
}

// ------------------------------------------------------------------
// fake mailer
// ------------------------------------------------------------------

type sentMail struct {
	to    string
	token string
	link  string
}

type fakeMailer struct {
	invitations []sentMail
	resets      []sentMail
	verifies    []sentMail

	sendErr       error            // fails every invitation send
	sendErrFor    map[string]error // fails invitation sends for specific addresses
	sentThenClear bool             // clear sendErr after first failure
}

func (f *fakeMailer) SendInvitationEmail(_ context.Context, to, token string) error {
	if err, ok := f.sendErrFor[to]; ok && err != nil {
		return err
	}
	if f.sendErr != nil {
		err := f.sendErr
		if f.sentThenClear {
			f.sendErr = nil
		}
		return err
	}
	f.invitations = append(f.invitations, sentMail{to: to, token: token})
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, to, link string) error {
	f.resets = append(f.resets, sentMail{to: to, link: link})
	return nil
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, to, link string) error {
	f.verifies = append(f.verifies, sentMail{to: to, link: link})
	return nil
}

// ------------------------------------------------------------------
// fake audit recorder
// ------------------------------------------------------------------

type fakeRecorder struct {
	events []auditdom.Event
}

func (f *fakeRecorder) Record(_ context.Context, e auditdom.Event) error {
	f.events = append(f.events, e)
	return nil
}

// ------------------------------------------------------------------
// wiring helper
// ------------------------------------------------------------------

type fixture struct {
	invitations *fakeInvitationRepo
	members     *fakeMemberRepo
	directory   *fakeDirectory
	mailer      *fakeMailer
	audit       *fakeRecorder
	uc          *InvitationUsecase
}

func newFixture() *fixture {
	f := &fixture{
		invitations: newFakeInvitationRepo(),
		members:     newFakeMemberRepo(),
		directory:   newFakeDirectory(),
		mailer:      &fakeMailer{},
		audit:       &fakeRecorder{},
	}
	resolver := NewAccountResolver(f.members, f.invitations, f.directory)
	resolver.now = fixedNow
	f.uc = NewInvitationUsecase(resolver, f.invitations, f.directory, f.mailer, f.audit)
	f.uc.now = fixedNow
	return f
}
