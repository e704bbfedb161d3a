package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/media"
	"hotel_booking/internal/app"
	"hotel_booking/internal/storage/sqlstore"
)

// ---- harness ----

type api struct {
	t     *testing.T
	ts    *httptest.Server
	media string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlstore.Open("sqlite", filepath.Join(dir, "http.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := sqlstore.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var handler http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handler.ServeHTTP(w, r) }))
	t.Cleanup(func() {
		ts.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := sqlstore.New(db)
	mediaRoot := filepath.Join(dir, "media")
	images := media.New(mediaRoot)
	hotels := app.NewHotelService(repo, images, nil, time.Minute)
	users := app.NewUserService(repo, bcrypt.MinCost)
	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Hotels:         hotels,
		Rooms:          app.NewRoomService(repo, hotels),
		Bookings:       app.NewBookingService(repo),
		Users:          users,
		Auth:           app.NewAuthService(users, repo, app.NewTokenIssuer("test-secret", 24*time.Hour, 7*24*time.Hour)),
		Media:          images,
		BaseURL:        ts.URL,
		MaxUploadBytes: 1 << 20,
	})
	handler = srv.Mux()
	return &api{t: t, ts: ts, media: mediaRoot}
}

func (a *api) raw(method, path, token, contentType, body string) (*http.Response, map[string]any) {
	a.t.Helper()
	req, _ := http.NewRequest(method, a.ts.URL+path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return a.send(req, token)
}

func multipartHotel(fields map[string]string, image []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if image != nil {
		fw, _ := mw.CreateFormFile("image", "front.jpg")
		_, _ = fw.Write(image)
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func (a *api) do(method, path, token string, body any) (*http.Response, map[string]any) {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, a.ts.URL+path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, token)
}

func (a *api) send(req *http.Request, token string) (*http.Response, map[string]any) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func (a *api) token(email string) string {
	a.t.Helper()
	resp, body := a.do("POST", "/api/auth/register/", "", map[string]any{
		"email": email, "password": "s3cretpass", "password_confirmation": "s3cretpass",
	})
	if resp.StatusCode != http.StatusCreated {
		a.t.Fatalf("register: %d %v", resp.StatusCode, body)
	}
	return body["token"].(string)
}

func testHotel(name string) map[string]any {
	return map[string]any{"name": name, "address": "A", "city": "C", "email": "a@b.com", "price_per_night": 100.00}
}

// ---- tests ----

func TestCreateHotelScenario(t *testing.T) {
	a := newAPI(t)
	tok := a.token("owner@example.com")

	resp, body := a.do("POST", "/api/hotels/", tok, testHotel("Test Hotel"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %v", resp.StatusCode, body)
	}
	if body["slug"] != "test-hotel" || body["created_at"] == nil {
		t.Fatalf("missing slug/created_at: %v", body)
	}
	if body["price_per_night"] != "100.00" || body["country"] != "Sénégal" || body["image_url"] != nil {
		t.Fatalf("unexpected body: %v", body)
	}

	resp, body = a.do("POST", "/api/hotels/", tok, testHotel("Test Hotel"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate: %d %v", resp.StatusCode, body)
	}
	errs, _ := body["errors"].(map[string]any)
	if errs["name"] == nil {
		t.Fatalf("expected name error: %v", body)
	}
}

func TestWritesRequireToken(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.do("POST", "/api/hotels/", "", testHotel("X"))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: %d", resp.StatusCode)
	}
	resp, _ = a.do("GET", "/api/bookings/", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous bookings: %d", resp.StatusCode)
	}
	resp, _ = a.do("GET", "/api/hotels/", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public hotel list: %d", resp.StatusCode)
	}

	// a refresh token is not a bearer credential
	_, reg := a.do("POST", "/api/auth/register/", "", map[string]any{
		"email": "r@example.com", "password": "s3cretpass", "password_confirmation": "s3cretpass",
	})
	resp, _ = a.do("GET", "/api/auth/me/", reg["refresh"].(string), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh as bearer: %d", resp.StatusCode)
	}
	resp, me := a.do("GET", "/api/auth/me/", reg["token"].(string), nil)
	if resp.StatusCode != http.StatusOK || me["email"] != "r@example.com" || me["password"] != nil {
		t.Fatalf("me: %d %v", resp.StatusCode, me)
	}
}

func TestLoginErrorsAreGeneric(t *testing.T) {
	a := newAPI(t)
	a.token("known@example.com")

	r1, wrong := a.do("POST", "/api/auth/login/", "", map[string]any{"email": "known@example.com", "password": "badpassword"})
	r2, unknown := a.do("POST", "/api/auth/login/", "", map[string]any{"email": "nobody@example.com", "password": "badpassword"})
	if r1.StatusCode != http.StatusUnauthorized || r2.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status: %d / %d", r1.StatusCode, r2.StatusCode)
	}
	if wrong["detail"] != unknown["detail"] {
		t.Fatalf("details differ: %v / %v", wrong, unknown)
	}

	resp, ok := a.do("POST", "/api/auth/login/", "", map[string]any{"email": "known@example.com", "password": "s3cretpass"})
	if resp.StatusCode != http.StatusOK || ok["token"] == nil || ok["user"] == nil {
		t.Fatalf("login: %d %v", resp.StatusCode, ok)
	}

	resp, missing := a.do("POST", "/api/auth/login/", "", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest || missing["errors"] == nil {
		t.Fatalf("empty login: %d %v", resp.StatusCode, missing)
	}
}

func TestImageRoundTrip(t *testing.T) {
	a := newAPI(t)
	tok := a.token("photo@example.com")
	img := []byte("\xff\xd8\xff\xe0 fake jpeg payload")

	buf, ct := multipartHotel(map[string]string{
		"name": "Photo Hotel", "address": "A", "city": "C", "email": "p@example.com", "price_per_night": "80.50", "is_active": "false",
	}, img)
	req, _ := http.NewRequest("POST", a.ts.URL+"/api/hotels/", buf)
	req.Header.Set("Content-Type", ct)
	resp, body := a.send(req, tok)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("multipart create: %d %v", resp.StatusCode, body)
	}
	if body["is_active"] != false {
		t.Fatalf("form bool ignored: %v", body)
	}
	url, _ := body["image_url"].(string)
	if !strings.HasPrefix(url, a.ts.URL+"/api/media/hotel_images/") {
		t.Fatalf("image_url = %q", url)
	}

	got, err := http.Get(url)
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	defer got.Body.Close()
	b, _ := io.ReadAll(got.Body)
	if got.StatusCode != http.StatusOK || !bytes.Equal(b, img) {
		t.Fatalf("image: %d %q", got.StatusCode, b)
	}
	if got.Header.Get("Content-Type") != "image/jpeg" || got.Header.Get("Cache-Control") != "public, max-age=3600" {
		t.Fatalf("headers: %v", got.Header)
	}

	resp, _ = a.do("GET", "/api/media/hotel_images/missing.jpg", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing image: %d", resp.StatusCode)
	}
}

func TestCascadeOverHTTP(t *testing.T) {
	a := newAPI(t)
	tok := a.token("cascade@example.com")
	_, me := a.do("GET", "/api/auth/me", tok, nil)

	_, h := a.do("POST", "/api/hotels", tok, testHotel("Cascade"))
	hotelID := h["id"].(string)
	resp, room := a.do("POST", "/api/rooms/", tok, map[string]any{
		"hotel": hotelID, "room_number": 101, "room_type": "Double", "capacity": "2", "price_per_night": "55.00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("room: %d %v", resp.StatusCode, room)
	}
	roomID := room["id"].(string)
	resp, bk := a.do("POST", "/api/bookings/", tok, map[string]any{
		"hotel": hotelID, "user": me["id"], "room": roomID,
		"check_in": "2026-06-01T14:00:00Z", "check_out": "2026-06-03T11:00:00Z", "total_price": "110.00",
	})
	if resp.StatusCode != http.StatusCreated || bk["status"] != "pending" {
		t.Fatalf("booking: %d %v", resp.StatusCode, bk)
	}

	_, detail := a.do("GET", "/api/hotels/"+hotelID+"/", "", nil)
	if rooms, _ := detail["rooms"].([]any); len(rooms) != 1 {
		t.Fatalf("nested rooms: %v", detail["rooms"])
	}

	resp, _ = a.do("DELETE", "/api/hotels/"+hotelID+"/", tok, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	for _, p := range []string{"/api/hotels/" + hotelID + "/", "/api/rooms/" + roomID + "/", "/api/bookings/" + bk["id"].(string) + "/"} {
		resp, _ = a.do("GET", p, tok, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("GET %s after cascade: %d", p, resp.StatusCode)
		}
	}
}

func TestUpdateAndValidation(t *testing.T) {
	a := newAPI(t)
	tok := a.token("editor@example.com")
	_, h := a.do("POST", "/api/hotels/", tok, map[string]any{
		"name": "Before", "address": "A", "city": "C", "email": "a@b.com", "price_per_night": "10", "currency": "EUR",
	})
	id := h["id"].(string)

	resp, up := a.do("PUT", "/api/hotels/"+id+"/", tok, testHotel("After"))
	if resp.StatusCode != http.StatusOK || up["name"] != "After" || up["currency"] != "XOF" || up["slug"] != h["slug"] {
		t.Fatalf("update: %d %v", resp.StatusCode, up)
	}

	resp, bad := a.do("POST", "/api/hotels/", tok, map[string]any{"email": "nope", "price_per_night": "1.999"})
	errs, _ := bad["errors"].(map[string]any)
	if resp.StatusCode != http.StatusBadRequest || errs["name"] == nil || errs["email"] == nil || errs["price_per_night"] == nil {
		t.Fatalf("validation: %d %v", resp.StatusCode, bad)
	}

	resp, _ = a.do("PUT", "/api/hotels/does-not-exist/", tok, testHotel("Z"))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing: %d", resp.StatusCode)
	}
}

func TestCORSAndRoot(t *testing.T) {
	a := newAPI(t)

	// browser preflight goes through the CORS library
	req, _ := http.NewRequest("OPTIONS", a.ts.URL+"/api/hotels/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	resp, _ := a.send(req, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preflight: %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" || resp.Header.Get("Access-Control-Max-Age") != "86400" ||
		resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("preflight headers: %v", resp.Header)
	}

	// a bare OPTIONS still short-circuits with the permissive set
	req, _ = http.NewRequest("OPTIONS", a.ts.URL+"/api/rooms/", nil)
	resp, _ = a.send(req, "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" ||
		!strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Fatalf("bare OPTIONS: %d %v", resp.StatusCode, resp.Header)
	}

	resp, root := a.do("GET", "/api/", "", nil)
	if resp.StatusCode != http.StatusOK || root["hotels"] != a.ts.URL+"/api/hotels/" {
		t.Fatalf("root: %d %v", resp.StatusCode, root)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("CORS header missing on GET")
	}
	req, _ = http.NewRequest("GET", a.ts.URL+"/api/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, _ = a.send(req, "")
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" || resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("cross-origin GET headers: %v", resp.Header)
	}

	resp, _ = a.do("POST", "/api/auth/logout/", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
}

func TestMistypedFieldsReportedWithTheRest(t *testing.T) {
	a := newAPI(t)
	tok := a.token("types@example.com")

	resp, body := a.raw("POST", "/api/hotels/", tok, "application/json", `{"rating":"abc","city":"Dakar"}`)
	errs, _ := body["errors"].(map[string]any)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: %d %v", resp.StatusCode, body)
	}
	for _, f := range []string{"rating", "name", "address", "email", "price_per_night"} {
		if errs[f] == nil {
			t.Fatalf("no error for %s: %v", f, body)
		}
	}
	if errs["city"] != nil {
		t.Fatalf("well-typed city reported: %v", errs)
	}

	resp, body = a.raw("POST", "/api/rooms/", tok, "application/json", `{"is_available":"yes","price_per_night":true}`)
	errs, _ = body["errors"].(map[string]any)
	if resp.StatusCode != http.StatusBadRequest || errs["is_available"] == nil || errs["hotel"] == nil {
		t.Fatalf("room: %d %v", resp.StatusCode, body)
	}
	if msgs, _ := errs["price_per_night"].([]any); len(msgs) != 1 || msgs[0] != "A valid number is required." {
		t.Fatalf("price_per_night: %v", errs["price_per_night"])
	}
	raw, _ := json.Marshal(body)
	if strings.Contains(string(raw), "Go struct") || strings.Contains(string(raw), "RoomInput") {
		t.Fatalf("decoder internals leaked: %s", raw)
	}

	resp, body = a.raw("POST", "/api/rooms/", tok, "application/json", `{"hotel":`)
	if resp.StatusCode != http.StatusBadRequest || body["title"] != "Malformed JSON" {
		t.Fatalf("truncated body: %d %v", resp.StatusCode, body)
	}
}

func TestImageStoreFailureIsOpaque500(t *testing.T) {
	a := newAPI(t)
	tok := a.token("disk@example.com")
	if err := os.MkdirAll(a.media, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(a.media, "hotel_images"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	buf, ct := multipartHotel(map[string]string{
		"name": "No Disk", "address": "A", "city": "C", "email": "d@example.com", "price_per_night": "20",
	}, []byte("jpeg"))
	req, _ := http.NewRequest("POST", a.ts.URL+"/api/hotels/", buf)
	req.Header.Set("Content-Type", ct)
	resp, body := a.send(req, tok)
	if resp.StatusCode != http.StatusInternalServerError || body["detail"] != "internal error" {
		t.Fatalf("store failure: %d %v", resp.StatusCode, body)
	}
	raw, _ := json.Marshal(body)
	if strings.Contains(string(raw), a.media) || strings.Contains(string(raw), "hotel_images") {
		t.Fatalf("filesystem path leaked: %s", raw)
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := server.NewIPRateLimiter(1, 2)
	if !l.Allow("1.2.3.4") || !l.Allow("1.2.3.4") {
		t.Fatalf("burst not honoured")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("third request within the same instant allowed")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("limits leaked across clients")
	}
}

func TestIPRateLimiterKeepsABoundedClientSet(t *testing.T) {
	l := server.NewIPRateLimiter(1, 1)
	for i := 0; i < 10050; i++ {
		l.Allow(fmt.Sprintf("10.%d.%d.%d", i>>16&0xff, i>>8&0xff, i&0xff))
	}
	if n := l.Len(); n > 10000 {
		t.Fatalf("client buckets = %d", n)
	}
}

func limitedLogin(proxies string) http.Handler {
	p, err := server.ParseTrustedProxies(proxies)
	if err != nil {
		panic(err)
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return server.TrustedRealIP(p)(server.NewIPRateLimiter(1, 1).Middleware(ok))
}

func TestRateLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	h := limitedLogin("")
	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("POST", "/api/auth/login/", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		} else if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}
	if allowed != 1 {
		t.Fatalf("allowed %d of 50 from one peer", allowed)
	}
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	h := limitedLogin("10.0.0.0/8, 192.0.2.1")
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/api/auth/login/", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("client %d behind proxy limited: %d", i, rec.Code)
		}
	}

	if _, err := server.ParseTrustedProxies("not-an-ip"); err == nil {
		t.Fatalf("bad proxy entry accepted")
	}
}
