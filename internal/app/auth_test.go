package app_test

import (
	"context"
	"testing"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

func TestRegisterLoginMe(t *testing.T) {
	svc := app.NewAuthService(memory.New(), fakeHasher{}, fakeTokens{})
	ctx := context.Background()

	sess, err := svc.Register(ctx, app.Registration{Name: "Ann", TelNo: "1", Email: "Ann@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.User.Role != domain.RoleUser || sess.Token != "tok-user" || sess.User.Email != "ann@example.com" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	_, err = svc.Register(ctx, app.Registration{Name: "Ann2", Email: "ann@example.com", Password: "secret1"})
	kindOf(t, err, domain.KindDuplicateKey)

	_, err = svc.Register(ctx, app.Registration{Name: "Short", Email: "s@example.com", Password: "123"})
	kindOf(t, err, domain.KindValidation)

	_, err = svc.Login(ctx, "", "")
	kindOf(t, err, domain.KindValidation)
	_, err = svc.Login(ctx, "ann@example.com", "wrong")
	kindOf(t, err, domain.KindUnauthenticated)
	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	kindOf(t, err, domain.KindUnauthenticated)

	in, err := svc.Login(ctx, " ANN@example.com ", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	me, err := svc.Me(ctx, domain.Requester{ID: in.User.ID, Role: in.User.Role})
	if err != nil || me.Name != "Ann" {
		t.Fatalf("me: %+v %v", me, err)
	}
}

func TestCreateUser_Admin(t *testing.T) {
	svc := app.NewAuthService(memory.New(), fakeHasher{}, fakeTokens{})
	u, err := svc.CreateUser(context.Background(), app.Registration{Name: "Root", Email: "root@example.com", Password: "changeme"}, domain.RoleAdmin)
	if err != nil || u.Role != domain.RoleAdmin {
		t.Fatalf("create admin: %+v %v", u, err)
	}
	_, err = svc.CreateUser(context.Background(), app.Registration{Name: "X", Email: "x@example.com", Password: "changeme"}, domain.Role("owner"))
	kindOf(t, err, domain.KindValidation)
}
