package users

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/crucial707/cpe-tracker/cmd/cli/config"
	"github.com/crucial707/cpe-tracker/internal/auth"
	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/repo/memory"
	"github.com/crucial707/cpe-tracker/internal/service"
)

func TestCreateUser_PromptedPasswordKeepsSpaces(t *testing.T) {
	st := memory.NewStore()

	if _, err := run(t, createUserCmd(memoryOpener(st)), "correct horse battery\n", "--username", "carol"); err != nil {
		t.Fatalf("create: %v", err)
	}

	svc := config.MemoryServices(st, auth.NewPasswordHasher(4))
	ctx := context.Background()
	if _, err := svc.Users.Authenticate(ctx, service.Credentials{Username: "carol", Password: "correct horse battery"}); err != nil {
		t.Errorf("full password rejected: %v", err)
	}
	if _, err := svc.Users.Authenticate(ctx, service.Credentials{Username: "carol", Password: "correct"}); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Errorf("first word accepted: got %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateUser_PromptReadErrorIsReturned(t *testing.T) {
	st := memory.NewStore()

	out, err := run(t, createUserCmd(memoryOpener(st)), "", "--username", "dave")
	if err == nil || !strings.Contains(err.Error(), "read password") {
		t.Fatalf("got %v, want read password error", err)
	}
	if strings.Contains(out, "created") {
		t.Errorf("reported success after failed read: %s", out)
	}
	if _, err := st.Users().GetByUsername(context.Background(), "dave"); err == nil {
		t.Error("user created without a password")
	}
}

func TestPromptPassword_LastLineWithoutNewline(t *testing.T) {
	pw, err := promptPassword(strings.NewReader("pass phrase "), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("promptPassword: %v", err)
	}
	if pw != "pass phrase " {
		t.Errorf("got %q, want %q", pw, "pass phrase ")
	}
}

func TestPromptPassword_TerminalReadsWithoutEcho(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	oldRead, oldIsTerm := readPassword, isTerminal
	defer func() { readPassword, isTerminal = oldRead, oldIsTerm }()
	isTerminal = func(fd int) bool { return fd == int(r.Fd()) }
	readPassword = func(fd int) ([]byte, error) { return []byte("s3cret with spaces"), nil }

	var out bytes.Buffer
	pw, err := promptPassword(r, &out)
	if err != nil {
		t.Fatalf("promptPassword: %v", err)
	}
	if pw != "s3cret with spaces" {
		t.Errorf("got %q", pw)
	}
	if out.String() != "Password: \n" {
		t.Errorf("prompt output: got %q", out.String())
	}
}

func TestPromptPassword_TerminalError(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	oldRead, oldIsTerm := readPassword, isTerminal
	defer func() { readPassword, isTerminal = oldRead, oldIsTerm }()
	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return nil, errors.New("inappropriate ioctl") }

	if _, err := promptPassword(r, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
}
