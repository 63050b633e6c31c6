package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/repository"
	"github.com/mkoreshkov/saas-backend/pkg/mailer"
)

// In-memory repository fakes. The Repositories container they are bound
// into has no database handle, so Atomic runs its callback directly.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("email taken: %w", repository.ErrDuplicateEmail)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash, securityStamp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.SecurityStamp = securityStamp
	return nil
}

func (f *fakeUserRepo) ConfirmEmail(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	u.IsEmailConfirmed = true
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken // keyed by hash
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token.TokenHash]; ok {
		return fmt.Errorf("duplicate: %w", repository.ErrDuplicateToken)
	}
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	clone := *token
	f.tokens[token.TokenHash] = &clone
	return nil
}

func (f *fakeTokenRepo) GetByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[hash]
	if !ok {
		return nil, fmt.Errorf("token not found: %w", repository.ErrNotFound)
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTokenRepo) DeleteByHash(_ context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[hash]; !ok {
		return false, nil
	}
	delete(f.tokens, hash)
	return true, nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for hash, t := range f.tokens {
		if now.After(t.ExpiresAt) {
			delete(f.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

type fakeActionTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.ActionToken // keyed by id
}

func newFakeActionTokenRepo() *fakeActionTokenRepo {
	return &fakeActionTokenRepo{tokens: make(map[string]*domain.ActionToken)}
}

func (f *fakeActionTokenRepo) Create(_ context.Context, token *domain.ActionToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	clone := *token
	f.tokens[token.ID] = &clone
	return nil
}

func (f *fakeActionTokenRepo) GetByHash(_ context.Context, purpose, hash string) (*domain.ActionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.Purpose == purpose && t.TokenHash == hash {
			clone := *t
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("action token not found: %w", repository.ErrNotFound)
}

func (f *fakeActionTokenRepo) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[id]; !ok {
		return false, nil
	}
	delete(f.tokens, id)
	return true, nil
}

func (f *fakeActionTokenRepo) DeleteForUser(_ context.Context, userID, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, t := range f.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			delete(f.tokens, id)
		}
	}
	return nil
}

type fakeRoleRepo struct {
	mu        sync.Mutex
	roles     map[string]string   // name -> id
	userRoles map[string][]string // userID -> role names
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		roles: map[string]string{
			domain.RoleUser:  uuid.NewString(),
			domain.RoleAdmin: uuid.NewString(),
		},
		userRoles: make(map[string][]string),
	}
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.roles[name]
	if !ok {
		return nil, fmt.Errorf("role not found: %w", repository.ErrNotFound)
	}
	return &domain.Role{ID: id, Name: name}, nil
}

func (f *fakeRoleRepo) ListForUser(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.userRoles[userID]...), nil
}

func (f *fakeRoleRepo) Assign(_ context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, id := range f.roles {
		if id == roleID {
			f.userRoles[userID] = append(f.userRoles[userID], name)
			return nil
		}
	}
	return fmt.Errorf("role not found: %w", repository.ErrNotFound)
}

func (f *fakeRoleRepo) Remove(_ context.Context, userID, roleID string) error {
	return nil
}

type fakeOAuthRepo struct {
	mu         sync.Mutex
	identities map[string]*domain.OAuthIdentity // provider|sub
}

func newFakeOAuthRepo() *fakeOAuthRepo {
	return &fakeOAuthRepo{identities: make(map[string]*domain.OAuthIdentity)}
}

func (f *fakeOAuthRepo) Create(_ context.Context, identity *domain.OAuthIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := identity.Provider + "|" + identity.ProviderUserID
	if _, ok := f.identities[key]; ok {
		return fmt.Errorf("duplicate: %w", repository.ErrDuplicateOAuthIdentity)
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	clone := *identity
	f.identities[key] = &clone
	return nil
}

func (f *fakeOAuthRepo) GetByProvider(_ context.Context, provider, providerUserID string) (*domain.OAuthIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.identities[provider+"|"+providerUserID]
	if !ok {
		return nil, fmt.Errorf("identity not found: %w", repository.ErrNotFound)
	}
	clone := *identity
	return &clone, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	entries []*domain.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *n
	f.entries = append(f.entries, &clone)
	return nil
}

func (f *fakeNotificationRepo) ListForUser(_ context.Context, userID string, limit int) ([]*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Notification
	for _, n := range f.entries {
		if n.UserID != nil && *n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[string]*domain.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[string]*domain.Plan)}
}

func (f *fakePlanRepo) Create(_ context.Context, plan *domain.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.plans {
		if p.Code == plan.Code {
			return fmt.Errorf("duplicate: %w", repository.ErrDuplicatePlan)
		}
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	clone := *plan
	f.plans[plan.ID] = &clone
	return nil
}

func (f *fakePlanRepo) GetByID(_ context.Context, id string) (*domain.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan not found: %w", repository.ErrNotFound)
	}
	clone := *p
	return &clone, nil
}

func (f *fakePlanRepo) GetByCode(_ context.Context, code string) (*domain.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.plans {
		if p.Code == code {
			clone := *p
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("plan not found: %w", repository.ErrNotFound)
}

func (f *fakePlanRepo) List(_ context.Context, activeOnly bool) ([]*domain.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Plan
	for _, p := range f.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakePlanRepo) Update(_ context.Context, plan *domain.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.plans[plan.ID]; !ok {
		return fmt.Errorf("plan not found: %w", repository.ErrNotFound)
	}
	clone := *plan
	f.plans[plan.ID] = &clone
	return nil
}

func (f *fakePlanRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.plans[id]; !ok {
		return fmt.Errorf("plan not found: %w", repository.ErrNotFound)
	}
	delete(f.plans, id)
	return nil
}

type fakeTeamRepo struct {
	mu      sync.Mutex
	teams   map[string]*domain.Team
	members map[string][]*domain.TeamMember // teamID -> members
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:   make(map[string]*domain.Team),
		members: make(map[string][]*domain.TeamMember),
	}
}

func (f *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	clone := *team
	f.teams[team.ID] = &clone
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, fmt.Errorf("team not found: %w", repository.ErrNotFound)
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTeamRepo) ListForUser(_ context.Context, userID string) ([]*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Team
	for teamID, members := range f.members {
		for _, m := range members {
			if m.UserID == userID {
				clone := *f.teams[teamID]
				out = append(out, &clone)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) AddMember(_ context.Context, member *domain.TeamMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[member.TeamID]; !ok {
		return fmt.Errorf("team not found: %w", repository.ErrNotFound)
	}
	for _, m := range f.members[member.TeamID] {
		if m.UserID == member.UserID {
			return fmt.Errorf("duplicate: %w", repository.ErrDuplicateMember)
		}
	}
	clone := *member
	f.members[member.TeamID] = append(f.members[member.TeamID], &clone)
	return nil
}

func (f *fakeTeamRepo) RemoveMember(_ context.Context, teamID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := f.members[teamID]
	for i, m := range members {
		if m.UserID == userID {
			f.members[teamID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("member not found: %w", repository.ErrNotFound)
}

func (f *fakeTeamRepo) ListMembers(_ context.Context, teamID string) ([]*domain.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.TeamMember(nil), f.members[teamID]...), nil
}

func (f *fakeTeamRepo) GetMember(_ context.Context, teamID, userID string) (*domain.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members[teamID] {
		if m.UserID == userID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("member not found: %w", repository.ErrNotFound)
}

func (f *fakeTeamRepo) CountOwners(_ context.Context, teamID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.members[teamID] {
		if m.Role == domain.TeamRoleOwner {
			count++
		}
	}
	return count, nil
}

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*domain.Subscription)}
}

func (f *fakeSubscriptionRepo) Create(_ context.Context, sub *domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.CreatedAt = time.Now()
	clone := *sub
	f.subs[sub.ID] = &clone
	return nil
}

func (f *fakeSubscriptionRepo) GetByID(_ context.Context, id string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[id]
	if !ok {
		return nil, fmt.Errorf("subscription not found: %w", repository.ErrNotFound)
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSubscriptionRepo) GetActiveByTeam(_ context.Context, teamID string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.TeamID == teamID && s.Status == domain.SubscriptionActive {
			clone := *s
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("subscription not found: %w", repository.ErrNotFound)
}

func (f *fakeSubscriptionRepo) ListByTeam(_ context.Context, teamID string) ([]*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Subscription
	for _, s := range f.subs {
		if s.TeamID == teamID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) SetStatus(_ context.Context, id, status string, canceledAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[id]
	if !ok {
		return fmt.Errorf("subscription not found: %w", repository.ErrNotFound)
	}
	s.Status = status
	s.CanceledAt = canceledAt
	return nil
}

// fakeMailer records sent messages and optionally fails every send.
type fakeMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
	fail     bool
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("smtp unreachable")
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMailer) sent() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.messages...)
}

// fakePublisher records published events.
type fakePublisher struct {
	mu            sync.Mutex
	registered    []domain.UserRegisteredEvent
	passwords     []domain.PasswordChangedEvent
	subscriptions []domain.SubscriptionChangedEvent
}

func (f *fakePublisher) UserRegistered(_ context.Context, e domain.UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, e)
	return nil
}

func (f *fakePublisher) PasswordChanged(_ context.Context, e domain.PasswordChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords = append(f.passwords, e)
	return nil
}

func (f *fakePublisher) SubscriptionChanged(_ context.Context, e domain.SubscriptionChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscriptions = append(f.subscriptions, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

// fakeBlacklist is an in-memory token blacklist.
type fakeBlacklist struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{tokens: make(map[string]struct{})}
}

func (f *fakeBlacklist) AddToken(_ context.Context, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = struct{}{}
	return nil
}

func (f *fakeBlacklist) IsTokenBlacklisted(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok, nil
}

// fakeGoogleVerifier returns a canned identity.
type fakeGoogleVerifier struct {
	identity *GoogleIdentity
	err      error
}

func (f *fakeGoogleVerifier) Verify(_ context.Context, _ string) (*GoogleIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func newTestRepos() *repository.Repositories {
	return &repository.Repositories{
		User:         newFakeUserRepo(),
		Token:        newFakeTokenRepo(),
		ActionToken:  newFakeActionTokenRepo(),
		Role:         newFakeRoleRepo(),
		OAuth:        newFakeOAuthRepo(),
		Plan:         newFakePlanRepo(),
		Subscription: newFakeSubscriptionRepo(),
		Team:         newFakeTeamRepo(),
		Notification: &fakeNotificationRepo{},
	}
}
