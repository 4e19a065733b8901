package decrypt_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/docdecrypt/internal/decrypt"
)

// Case is a single status parsing case from a YAML golden file.
type Case struct {
	Description string `yaml:"description,omitempty"`
	Body        string `yaml:"body"`
	OK          bool   `yaml:"ok"`
	Code        int    `yaml:"code"`
	Message     string `yaml:"message"`
	File        string `yaml:"file"`
	Mode        string `yaml:"mode"`
}

// Group is a named collection of test cases.
type Group struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Cases       []Case `yaml:"cases"`
}

func loadGroups(t *testing.T) []Group {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "status.yml"))
	if err != nil {
		t.Fatalf("reading golden file: %v", err)
	}

	var groups []Group
	if err := yaml.Unmarshal(data, &groups); err != nil {
		t.Fatalf("parsing golden file: %v", err)
	}

	if len(groups) == 0 {
		t.Fatal("no groups in golden file")
	}

	return groups
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, g := range loadGroups(t) {
		t.Run(g.Name, func(t *testing.T) {
			t.Parallel()

			for i, tc := range g.Cases {
				desc := tc.Description
				if desc == "" {
					desc = fmt.Sprintf("case_%d", i)
				}

				t.Run(desc, func(t *testing.T) {
					t.Parallel()

					got, ok := decrypt.ParseStatus([]byte(tc.Body))
					if ok != tc.OK {
						t.Fatalf("ParseStatus(%q) ok = %v, want %v", tc.Body, ok, tc.OK)
					}

					if !ok {
						return
					}

					want := decrypt.Status{Code: tc.Code, Message: tc.Message, FileName: tc.File, Mode: tc.Mode}
					if got != want {
						t.Errorf("ParseStatus(%q) = %+v, want %+v", tc.Body, got, want)
					}
				})
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	got := decrypt.SuccessStatus("/docs/a.decrypted").String()
	want := "result code : 1, result msg : success\nFile Name:/docs/a.decrypted"

	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIdentityStatusIsDistinguishable(t *testing.T) {
	t.Parallel()

	genuine := decrypt.SuccessStatus("a.decrypted").String()
	identity := decrypt.IdentityStatus("a.decrypted").String()

	if !strings.HasPrefix(identity, genuine) {
		t.Errorf("identity record %q does not start with the standard record", identity)
	}

	if identity == genuine {
		t.Fatal("identity record equals the genuine record")
	}

	parsed, ok := decrypt.ParseStatus([]byte(identity))
	if !ok || parsed.Mode != decrypt.ModeIdentity {
		t.Errorf("ParseStatus(identity) = %+v, %v; want mode %q", parsed, ok, decrypt.ModeIdentity)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	t.Parallel()

	for _, status := range []decrypt.Status{
		decrypt.SuccessStatus("x/y.decrypted"),
		decrypt.IdentityStatus("x/y.decrypted"),
	} {
		got, ok := decrypt.ParseStatus([]byte(status.String()))
		if !ok || got != status {
			t.Errorf("ParseStatus(String(%+v)) = %+v, %v", status, got, ok)
		}
	}
}
