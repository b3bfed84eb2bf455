// Command smoke drives one full scheduling round trip against a running
// instance: open a session, queue a lesson, confirm, then read the day board
// back. It exits non-zero on the first failed step so it can gate deploys.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type sessionData struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
}

type confirmData struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	State   string `json:"state"`
}

func main() {
	var (
		base      string
		prefix    string
		teacherID string
		date      string
		timeout   time.Duration
		keep      bool
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.StringVar(&teacherID, "teacher", "", "teacher ID to schedule against (required)")
	flag.StringVar(&date, "date", time.Now().Format("2006-01-02"), "board date, YYYY-MM-DD")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.BoolVar(&keep, "keep", false, "leave the confirmed lesson in place instead of warning about cleanup")
	flag.Parse()

	if teacherID == "" {
		log.Fatal("-teacher is required")
	}

	client := &http.Client{Timeout: timeout}
	root := strings.TrimRight(base, "/")
	api := root + prefix

	step("health", func() error {
		resp, err := client.Get(root + "/health")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	})

	var session sessionData
	step("start session", func() error {
		body := fmt.Sprintf(`{"date":%q}`, date)
		return postJSON(client, api+"/scheduling/sessions", body, &session)
	})

	step("add request", func() error {
		body := fmt.Sprintf(`{"teacherId":%q,"students":["smoke-check"]}`, teacherID)
		return postJSON(client, api+"/scheduling/sessions/"+session.SessionID+"/requests", body, &session)
	})

	if session.State != "ready_to_confirm" {
		log.Fatalf("session not ready to confirm, state=%s (teacher missing or already fully booked?)", session.State)
	}

	var confirmed confirmData
	step("confirm", func() error {
		if err := postJSON(client, api+"/scheduling/sessions/"+session.SessionID+"/confirm", "", &confirmed); err != nil {
			return err
		}
		if !confirmed.Success {
			return fmt.Errorf("confirm rejected: %s", confirmed.Error)
		}
		return nil
	})

	step("day board", func() error {
		resp, err := client.Get(api + "/scheduling/board?date=" + date)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	})

	if !keep {
		fmt.Println("note: the confirmed smoke lesson is left on the board, delete it via /events")
	}
	fmt.Println("smoke check passed")
}

func step(name string, fn func() error) {
	start := time.Now()
	if err := fn(); err != nil {
		fmt.Printf("[FAIL] %s: %v\n", name, err)
		os.Exit(1)
	}
	fmt.Printf("[OK] %s (%s)\n", name, time.Since(start))
}

func postJSON(client *http.Client, url, body string, out interface{}) error {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	resp, err := client.Post(url, "application/json", reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("invalid response body: %w", err)
	}
	if env.Error != nil {
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
