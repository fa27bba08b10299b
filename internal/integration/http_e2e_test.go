//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/adapters/auth"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/mailer"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

// ---------- helpers ----------

type relayInbox struct {
	mu   sync.Mutex
	msgs []map[string]string
	got  chan struct{}
}

func (in *relayInbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var m map[string]string
	_ = json.NewDecoder(r.Body).Decode(&m)
	in.mu.Lock()
	in.msgs = append(in.msgs, m)
	in.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
	in.got <- struct{}{}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotels",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotels")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := mysqlrepo.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func call(t *testing.T, method, url, token string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	var out map[string]json.RawMessage
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func field[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

// ---------- the test ----------

func TestHTTP_EndToEnd_BookingFlow(t *testing.T) {
	db := startMySQL(t)
	store := mysqlrepo.New(db)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	inbox := &relayInbox{got: make(chan struct{}, 8)}
	relay := httptest.NewServer(inbox)
	defer relay.Close()
	dispatcher := mailer.NewDispatcher(mailer.NewRelayTransport(relay.URL, "k", "no-reply@hotel.example", time.Second), mailer.Options{RPS: 100})
	go func() { _ = dispatcher.Run(ctx) }()

	tokens := auth.NewTokens(bytes.Repeat([]byte{7}, 32), bytes.Repeat([]byte{9}, 32), time.Hour)
	authSvc := app.NewAuthService(store, auth.Hasher{Cost: bcrypt.MinCost}, tokens)
	if _, err := authSvc.CreateUser(ctx, app.Registration{Name: "Root", Email: "root@example.com", Password: "changeme"}, domain.RoleAdmin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Bookings: app.NewBookingService(store, dispatcher, domain.DefaultMaxNights),
		Hotels:   app.NewHotelService(store, cache, time.Minute),
		Auth:     authSvc,
		Tokens:   tokens,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()
	api := ts.URL + "/api/v1"

	login := func(email, pw string) string {
		code, out := call(t, "POST", api+"/auth/login", "", map[string]string{"email": email, "password": pw})
		if code != 200 {
			t.Fatalf("login %s: %d", email, code)
		}
		return field[struct{ Token string }](t, out["data"]).Token
	}
	admin := login("root@example.com", "changeme")

	code, out := call(t, "POST", api+"/auth/register", "", map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret1"})
	if code != 200 {
		t.Fatalf("register: %d", code)
	}
	alice := field[struct{ Token string }](t, out["data"]).Token

	code, out = call(t, "POST", api+"/hotels", admin, map[string]any{
		"name": "Grand", "address": "1 Main", "telNo": "0800", "email": "desk@grand.example",
		"unAvailableDates": []string{"2024-06-10"},
	})
	if code != 200 {
		t.Fatalf("create hotel: %d %s", code, out["message"])
	}
	hotelID := field[struct{ ID int64 }](t, out["data"]).ID

	// cached read
	if code, _ = call(t, "GET", fmt.Sprintf("%s/hotels/%d", api, hotelID), "", nil); code != 200 {
		t.Fatalf("get hotel: %d", code)
	}
	if !mr.Exists(fmt.Sprintf("hotel-booking:hotel:%d", hotelID)) {
		t.Fatalf("hotel should be cached after a read")
	}

	code, out = call(t, "POST", fmt.Sprintf("%s/hotels/%d/bookings", api, hotelID), alice, map[string]string{"checkInDate": "2024-06-08", "checkOutDate": "2024-06-10"})
	if code != 400 || !strings.Contains(string(out["message"]), "Monday, June 10, 2024") {
		t.Fatalf("want conflict, got %d %s", code, out["message"])
	}

	code, out = call(t, "POST", fmt.Sprintf("%s/hotels/%d/bookings", api, hotelID), alice, map[string]string{"checkInDate": "2024-06-11", "checkOutDate": "2024-06-13"})
	if code != 200 {
		t.Fatalf("create booking: %d %s", code, out["message"])
	}
	bookingID := field[struct{ ID int64 }](t, out["data"]).ID

	select {
	case <-inbox.got:
	case <-time.After(5 * time.Second):
		t.Fatalf("no notification reached the relay")
	}
	inbox.mu.Lock()
	first := inbox.msgs[0]
	inbox.mu.Unlock()
	if first["to"] != "desk@grand.example" || first["subject"] != "Booking created" {
		t.Fatalf("unexpected notification: %+v", first)
	}

	// cascade
	if code, _ = call(t, "DELETE", fmt.Sprintf("%s/hotels/%d", api, hotelID), admin, nil); code != 200 {
		t.Fatalf("delete hotel: %d", code)
	}
	if code, _ = call(t, "GET", fmt.Sprintf("%s/bookings/%d", api, bookingID), admin, nil); code != 404 {
		t.Fatalf("booking survived cascade: %d", code)
	}
	if code, _ = call(t, "GET", fmt.Sprintf("%s/hotels/%d", api, hotelID), "", nil); code != 404 {
		t.Fatalf("stale cache after delete: %d", code)
	}
}
