package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/directory"
)

func newReconcileService(t *testing.T, dir *fakeDirectory) (*ReconcileService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	s := NewReconcileService(nil, &fakeRepoManager{repo: repo}, dir, testConfig(), testLogger())
	return s, repo
}

func TestRun_CreatesNewRecords(t *testing.T) {
	dir := &fakeDirectory{users: []directory.User{
		{ID: 1, Email: "george.bluth@reqres.in", FirstName: "George", LastName: "Bluth", Avatar: "https://reqres.in/img/faces/1-image.jpg"},
		{ID: 2, Email: "janet.weaver@reqres.in", FirstName: "Janet", LastName: "Weaver", Avatar: "https://reqres.in/img/faces/2-image.jpg"},
	}}
	s, repo := newReconcileService(t, dir)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Created != 2 || result.Updated != 0 {
		t.Fatalf("expected created=2 updated=0, got %+v", result)
	}

	stored, err := repo.GetByEmail(context.Background(), "janet.weaver@reqres.in")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if stored.FirstName == nil || *stored.FirstName != "Janet" {
		t.Fatalf("profile fields not applied: %+v", stored)
	}
	if stored.Avatar == nil || *stored.Avatar != "https://reqres.in/img/faces/2-image.jpg" {
		t.Fatalf("avatar URL not kept verbatim: %+v", stored)
	}
	// imported records get the hashed placeholder secret
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password")); err != nil {
		t.Fatalf("placeholder secret not applied: %v", err)
	}
}

func TestRun_SecondPassUpdates(t *testing.T) {
	dir := &fakeDirectory{users: []directory.User{
		{ID: 1, Email: "george.bluth@reqres.in", FirstName: "George", LastName: "Bluth"},
	}}
	s, _ := newReconcileService(t, dir)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("first Run error: %v", err)
	}

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Fatalf("expected created=0 updated=1, got %+v", result)
	}
}

func TestRun_NeverResetsAnExistingPassword(t *testing.T) {
	dir := &fakeDirectory{users: []directory.User{
		{ID: 1, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
	}}
	s, repo := newReconcileService(t, dir)

	// an account that set a real password before the reconciliation run
	us := NewUserService(nil, &fakeRepoManager{repo: repo}, &fakeAvatarStore{}, testConfig(), testLogger())
	created, err := us.Register(context.Background(), CreateUserRequest{Email: "jane@example.com", Password: "real-password"}, nil)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	before := repo.byID[created.ID].PasswordHash

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Fatalf("expected created=0 updated=1, got %+v", result)
	}

	after := repo.byID[created.ID].PasswordHash
	if before != after {
		t.Fatalf("reconciliation must not overwrite an existing password hash")
	}
	if after := repo.byID[created.ID]; after.FirstName == nil || *after.FirstName != "Jane" {
		t.Fatalf("profile fields must still be overwritten: %+v", after)
	}

	if _, _, err := us.Authenticate(context.Background(), "jane@example.com", "real-password"); err != nil {
		t.Fatalf("existing password must keep working after reconciliation: %v", err)
	}
}

func TestRun_DuplicateEmailWithinBatch(t *testing.T) {
	dir := &fakeDirectory{users: []directory.User{
		{ID: 1, Email: "dup@example.com", FirstName: "First"},
		{ID: 2, Email: "dup@example.com", FirstName: "Second"},
	}}
	s, repo := newReconcileService(t, dir)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	// last write wins within a batch
	if result.Created != 1 || result.Updated != 1 {
		t.Fatalf("expected created=1 updated=1, got %+v", result)
	}
	stored, _ := repo.GetByEmail(context.Background(), "dup@example.com")
	if stored.FirstName == nil || *stored.FirstName != "Second" {
		t.Fatalf("expected last record applied, got %+v", stored)
	}
}

func TestRun_UpstreamFailure(t *testing.T) {
	dir := &fakeDirectory{err: fmt.Errorf("%w: connection refused", common.ErrorUpstream)}
	s, repo := newReconcileService(t, dir)

	_, err := s.Run(context.Background())
	if !errors.Is(err, common.ErrorUpstream) {
		t.Fatalf("expected common.ErrorUpstream, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("no records must be written when the listing fails")
	}
}
