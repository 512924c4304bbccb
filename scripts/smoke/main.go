// Command smoke probes a running NoteHub instance and verifies each
// endpoint answers with its expected status. Intended for deployment
// checks; it never mutates data.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type probe struct {
	Method   string
	Path     string
	Expected int
	Critical bool
}

// Probes run against an instance with no profile registered for the
// token's subject, so resource listings answer with the
// profile-required refusal rather than data.
var probes = []probe{
	{Method: http.MethodGet, Path: "/health", Expected: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/ready", Expected: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/profile", Expected: http.StatusNotFound},
	{Method: http.MethodGet, Path: "/api/v1/resources/mine", Expected: http.StatusOK},
	{Method: http.MethodGet, Path: "/api/v1/resources/browse", Expected: http.StatusForbidden},
}

func main() {
	var (
		base    string
		token   string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", os.Getenv("SMOKE_TOKEN"), "Bearer token for authenticated probes")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	failures := 0

	fmt.Println("NoteHub Smoke Report")
	fmt.Println("====================")
	for _, p := range probes {
		status, dur, err := run(client, base, token, p)
		if err != nil {
			fmt.Printf("[ERROR] %s %s: %v\n", p.Method, p.Path, err)
			if p.Critical {
				failures++
			}
			continue
		}
		verdict := "OK"
		if status != p.Expected {
			verdict = "FAIL"
			if p.Critical {
				failures++
			}
		}
		fmt.Printf("[%s] %s %s -> %d (want %d, %s)\n", verdict, p.Method, p.Path, status, p.Expected, dur)
	}

	if failures > 0 {
		log.Fatalf("%d critical probe(s) failed", failures)
	}
}

func run(client *http.Client, base, token string, p probe) (int, time.Duration, error) {
	url := strings.TrimRight(base, "/") + p.Path
	req, err := http.NewRequest(p.Method, url, nil)
	if err != nil {
		return 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, time.Since(start), nil
}
