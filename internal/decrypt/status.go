package decrypt

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/idelchi/docdecrypt/internal/fileutil"
)

const (
	// CodeSuccess is the result code the vendor tooling uses for success.
	CodeSuccess = 1
	// ModeIdentity marks a status record written for an unchanged copy.
	ModeIdentity = "identity"

	fileNamePrefix = "File Name:"
	modePrefix     = "Mode:"
	identityNotice = "Warning:content was copied unchanged and is NOT decrypted"
)

//nolint:gochecknoglobals
var resultLine = regexp.MustCompile(`^result code\s*:\s*(-?\d+)\s*,\s*result msg\s*:\s*([^\r\n]*)`)

// Status is the status record that accompanies every produced artifact.
type Status struct {
	Code     int
	Message  string
	FileName string
	// Mode is empty for genuine decryptions.
	Mode string
}

// SuccessStatus returns the record for a genuine decryption written to output.
func SuccessStatus(output string) Status {
	return Status{Code: CodeSuccess, Message: "success", FileName: output}
}

// IdentityStatus returns the record for an unchanged copy written to output.
// The first two lines match SuccessStatus so downstream tooling keeps working.
func IdentityStatus(output string) Status {
	status := SuccessStatus(output)
	status.Mode = ModeIdentity

	return status
}

// OK reports whether the record signals success.
func (s Status) OK() bool {
	return s.Code == CodeSuccess
}

// String renders the record in the vendor's fixed format.
func (s Status) String() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "result code : %d, result msg : %s\n%s%s", s.Code, s.Message, fileNamePrefix, s.FileName)

	if s.Mode != "" {
		fmt.Fprintf(&buf, "\n%s%s", modePrefix, s.Mode)
	}

	if s.Mode == ModeIdentity {
		buf.WriteString("\n" + identityNotice)
	}

	return buf.String()
}

// WriteStatus atomically writes the record to path.
func WriteStatus(path string, status Status) error {
	if err := fileutil.WriteFile(path, []byte(status.String())); err != nil {
		return fmt.Errorf("%w: status record %q: %w", ErrOutputWriteFailed, path, err)
	}

	return nil
}

// ParseStatus recognizes a status record in either the vendor's text format or
// a JSON object. The boolean is false when body is not a status record.
func ParseStatus(body []byte) (Status, bool) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSONStatus(trimmed)
	}

	return parseTextStatus(trimmed)
}

// parseTextStatus only accepts a record that starts the body, so a decrypted
// document quoting a record is not mistaken for one.
func parseTextStatus(body []byte) (Status, bool) {
	match := resultLine.FindSubmatch(body)
	if match == nil {
		return Status{}, false
	}

	code, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return Status{}, false
	}

	status := Status{Code: code, Message: strings.TrimSpace(string(match[2]))}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, fileNamePrefix) && status.FileName == "":
			status.FileName = strings.TrimSpace(strings.TrimPrefix(line, fileNamePrefix))
		case strings.HasPrefix(line, modePrefix):
			status.Mode = strings.TrimSpace(strings.TrimPrefix(line, modePrefix))
		}
	}

	return status, true
}

func parseJSONStatus(body []byte) (Status, bool) {
	if !gjson.ValidBytes(body) {
		return Status{}, false
	}

	code := firstOf(body, "resultCode", "result_code", "code")
	if !code.Exists() {
		return Status{}, false
	}

	return Status{
		Code:     int(code.Int()),
		Message:  firstOf(body, "resultMsg", "result_msg", "message").String(),
		FileName: firstOf(body, "fileName", "file_name", "File Name").String(),
		Mode:     firstOf(body, "mode").String(),
	}, true
}

func firstOf(body []byte, paths ...string) gjson.Result {
	for _, p := range paths {
		if res := gjson.GetBytes(body, p); res.Exists() {
			return res
		}
	}

	return gjson.Result{}
}
