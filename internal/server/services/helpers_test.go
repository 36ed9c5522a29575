package services

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
	"github.com/Velislav710/TeenBudget-sub001/internal/dbx"
	"github.com/Velislav710/TeenBudget-sub001/internal/logging"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/auth"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/config"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/mail"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/models"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/password"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/pending"
	usersrepo "github.com/Velislav710/TeenBudget-sub001/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeUsers is an in-memory user directory.
type fakeUsers struct {
	byEmail map[string]*models.User
	nextID  int64

	getErr    error
	createErr error
	updateErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrEmailTaken
	}
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.nextID++
	cp := *u
	f.byEmail[u.Email] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeRepoManager struct {
	u usersrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository         { return m.u }

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) last(t *testing.T) mail.Message {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return f.sent[len(f.sent)-1]
}

var resetTokenRe = regexp.MustCompile(`token=(\S+)`)

// resetToken extracts the transport token from a reset email.
func resetToken(t *testing.T, msg mail.Message) string {
	t.Helper()
	m := resetTokenRe.FindStringSubmatch(msg.Body)
	if m == nil {
		t.Fatalf("no reset link in %q", msg.Body)
	}
	tok, err := url.QueryUnescape(m[1])
	if err != nil {
		t.Fatalf("unescape token: %v", err)
	}
	return tok
}

// fixedCodes hands out fixed verification codes in order.
func fixedCodes(list ...string) pending.CodeFunc {
	i := 0
	return func() (string, error) {
		c := list[i%len(list)]
		i++
		return c, nil
	}
}

type fixture struct {
	db     *sql.DB
	mock   sqlmock.Sqlmock
	clock  *testClock
	users  *fakeUsers
	rm     *fakeRepoManager
	store  *pending.MemoryStore
	codec  *auth.Codec
	hasher *password.BcryptHasher
	mailer *fakeMailer
	cfg    *config.Config

	signup  *SignupService
	session *SessionService
	reset   *ResetService
}

func newFixture(t *testing.T, verificationCodes ...string) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if len(verificationCodes) == 0 {
		verificationCodes = []string{"123456"}
	}

	clock := &testClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.ResetLinkBaseURL = "https://app.teenbudget.test/reset-password"

	f := &fixture{
		db:     db,
		mock:   mock,
		clock:  clock,
		users:  newFakeUsers(),
		codec:  auth.NewCodec([]byte(cfg.SecretKey), auth.WithClock(clock.Now)),
		hasher: password.NewBcryptHasher(bcrypt.MinCost),
		mailer: &fakeMailer{},
		cfg:    cfg,
	}
	f.rm = &fakeRepoManager{u: f.users}
	f.store = pending.NewMemoryStore(cfg.SignupCodeTTL,
		pending.WithClock(clock.Now), pending.WithCodeGenerator(fixedCodes(verificationCodes...)))

	log := logging.Nop{}
	f.signup = NewSignupService(db, f.rm, f.store, f.hasher, f.mailer, cfg, log)
	f.session = NewSessionService(db, f.rm, f.codec, f.hasher, cfg, log)
	f.reset = NewResetService(db, f.rm, f.codec, f.hasher, f.mailer, cfg, log)
	return f
}

func (f *fixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

// register creates a user directly in the directory.
func (f *fixture) register(t *testing.T, email, plain string) *models.User {
	t.Helper()
	hash, err := f.hasher.Hash(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := f.users.Create(context.Background(), &models.User{FirstName: "Ana", LastName: "Lopez", Email: email, PasswordHash: hash})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}
