package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	nextID int64
	users  map[int64]User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]User)}
}

func (f *fakeRepo) Create(_ context.Context, user User) (User, error) {
	for _, u := range f.users {
		if u.CompanyID == user.CompanyID && u.Email == user.Email {
			return User{}, ErrDuplicateEmail
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, companyID int64, email string) (User, error) {
	for _, u := range f.users {
		if u.CompanyID == companyID && u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeRepo) Get(_ context.Context, companyID, id int64) (User, error) {
	u, ok := f.users[id]
	if !ok || u.CompanyID != companyID {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) List(_ context.Context, companyID int64) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestCreateHashesPassword(t *testing.T) {
	svc := NewService(newFakeRepo())

	user, err := svc.Create(context.Background(), CreateUserInput{
		CompanyID: 1,
		Email:     "Ana@Example.com",
		Name:      "Ana",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", user.Email)
	require.NotEmpty(t, user.PasswordHash)
	require.NotContains(t, user.PasswordHash, "supersecret")
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateUserInput{
		CompanyID: 1, Email: "ana@example.com", Name: "Ana", Password: "supersecret",
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), 1, "ana@example.com", "supersecret")
	require.NoError(t, err)
	require.Equal(t, "Ana", user.Name)

	_, err = svc.Authenticate(context.Background(), 1, "ana@example.com", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), 1, "ghost@example.com", "supersecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), 2, "ana@example.com", "supersecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateUserInput{CompanyID: 1, Email: "a@b.c", Name: "A", Password: "short"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Email: "a@b.c", Name: "A", Password: "longenough"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{CompanyID: 1, Email: "a@b.c", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{CompanyID: 1, Email: "a@b.c", Name: "B", Password: "longenough"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}
