package fakeapi

import (
	"sync"

	"github.com/gofiber/fiber/v2"
)

type injected struct {
	status  int
	message string
}

type hold struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// control lets tests count requests, fail the next request to a path, or park
// a request until released.
type control struct {
	mu       sync.Mutex
	counts   map[string]int
	failures map[string]injected
	holds    map[string]*hold
}

func newControl() *control {
	return &control{
		counts:   make(map[string]int),
		failures: make(map[string]injected),
		holds:    make(map[string]*hold),
	}
}

func requestKey(method, path string) string {
	return method + " " + path
}

func (ctl *control) middleware(c *fiber.Ctx) error {
	key := requestKey(c.Method(), c.Path())

	ctl.mu.Lock()
	ctl.counts[key]++
	f, failing := ctl.failures[key]
	delete(ctl.failures, key)
	h := ctl.holds[key]
	delete(ctl.holds, key)
	ctl.mu.Unlock()

	if h != nil {
		close(h.entered)
		<-h.release
	}
	if failing {
		if f.message == "" {
			return c.SendStatus(f.status)
		}
		return fail(c, f.status, f.message)
	}
	return c.Next()
}

// Requests returns how many requests reached method path, e.g. ("POST", "/api/posts").
func (s *Server) Requests(method, path string) int {
	s.control.mu.Lock()
	defer s.control.mu.Unlock()
	return s.control.counts[requestKey(method, path)]
}

// FailNext makes the next request to method path answer status with message.
// An empty message sends no body.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.control.mu.Lock()
	defer s.control.mu.Unlock()
	s.control.failures[requestKey(method, path)] = injected{status: status, message: message}
}

// Hold parks the next request to method path. entered is closed once the
// request arrives; release lets it continue.
func (s *Server) Hold(method, path string) (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	s.control.mu.Lock()
	s.control.holds[requestKey(method, path)] = h
	s.control.mu.Unlock()
	return h.entered, func() { h.once.Do(func() { close(h.release) }) }
}
