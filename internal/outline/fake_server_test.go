package outline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// fakeServer is an in-memory Outline management API.
type fakeServer struct {
	mu sync.Mutex

	keys         map[string]accessKey
	usage        map[string]int64
	defaultLimit *int64
	// serverInfoRaw and keysRaw, when set, replace the GET /server and
	// GET /access-keys/ bodies.
	serverInfoRaw string
	keysRaw       string
	nextID        int

	failList    bool
	failMetrics bool
	failCreate  bool
	failRename  bool
	failServer  bool

	calls map[string]int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		keys:   map[string]accessKey{},
		usage:  map[string]int64{},
		nextID: 1,
		calls:  map[string]int{},
	}
}

func (f *fakeServer) addKey(k accessKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[k.ID] = k
	if id, err := strconv.Atoi(k.ID); err == nil && id >= f.nextID {
		f.nextID = id + 1
	}
}

func (f *fakeServer) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeServer) handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/access-keys/", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls["list"]++
		if f.failList {
			writeError(w, http.StatusInternalServerError)
			return
		}
		if f.keysRaw != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(f.keysRaw))
			return
		}
		ids := make([]string, 0, len(f.keys))
		for id := range f.keys {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		resp := accessKeysResp{AccessKeys: []accessKey{}}
		for _, id := range ids {
			resp.AccessKeys = append(resp.AccessKeys, f.keys[id])
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/metrics/transfer", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls["metrics"]++
		if f.failMetrics {
			writeError(w, http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, transferMetrics{ByKey: f.usage})
	})

	r.Post("/access-keys/", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls["create"]++
		if f.failCreate {
			writeError(w, http.StatusInternalServerError)
			return
		}
		id := strconv.Itoa(f.nextID)
		f.nextID++
		k := accessKey{
			ID:        id,
			Name:      "",
			Password:  "secret" + id,
			Port:      12345,
			Method:    "chacha20-ietf-poly1305",
			AccessURL: "ss://c2VjcmV0@127.0.0.1:12345/?outline=1",
		}
		f.keys[id] = k
		writeJSON(w, http.StatusCreated, k)
	})

	r.Delete("/access-keys/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls["delete"]++
		id := chi.URLParam(r, "id")
		if _, ok := f.keys[id]; !ok {
			writeError(w, http.StatusNotFound)
			return
		}
		delete(f.keys, id)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Put("/access-keys/{id}/name/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls["rename"]++
		id := chi.URLParam(r, "id")
		k, ok := f.keys[id]
		if !ok || f.failRename {
			writeError(w, http.StatusNotFound)
			return
		}
		k.Name = r.FormValue("name")
		f.keys[id] = k
		w.WriteHeader(http.StatusNoContent)
	})

	r.Put("/access-keys/{id}/data-limit", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls["set_limit"]++
		id := chi.URLParam(r, "id")
		k, ok := f.keys[id]
		if !ok {
			writeError(w, http.StatusNotFound)
			return
		}
		var req dataLimitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest)
			return
		}
		b := req.Limit.Bytes
		k.DataLimit = &dataLimit{Bytes: &b}
		f.keys[id] = k
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/access-keys/{id}/data-limit", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls["remove_limit"]++
		id := chi.URLParam(r, "id")
		k, ok := f.keys[id]
		if !ok {
			writeError(w, http.StatusNotFound)
			return
		}
		k.DataLimit = nil
		f.keys[id] = k
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/server", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls["server"]++
		if f.failServer {
			writeError(w, http.StatusBadGateway)
			return
		}
		if f.serverInfoRaw != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(f.serverInfoRaw))
			return
		}
		info := serverInfo{Name: "fake", ServerID: "srv-1", Version: "1.9.0", MetricsEnabled: true}
		if f.defaultLimit != nil {
			b := *f.defaultLimit
			info.AccessKeyDataLimit = &dataLimit{Bytes: &b}
		}
		writeJSON(w, http.StatusOK, info)
	})

	r.Put("/server/access-key-data-limit", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var req dataLimitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest)
			return
		}
		b := req.Limit.Bytes
		f.defaultLimit = &b
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/server/access-key-data-limit", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.defaultLimit = nil
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]string{"code": "Error", "message": http.StatusText(status)})
}

// start serves f over plain HTTP and returns a client pointed at it.
func (f *fakeServer) start(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL+"/", srv.Client())
}

func int64p(v int64) *int64 { return &v }
