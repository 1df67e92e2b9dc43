// Package upload validates admin uploads and writes them under the public
// uploads directory.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultURLPrefix is where the server exposes the uploads directory.
const DefaultURLPrefix = "/uploads"

const mb = 1 << 20

// sniffLen is how much of a file is read to detect its type.
const sniffLen = 3072

// Rule constrains one upload type.
type Rule struct {
	Dir     string
	MaxSize int64
	Allowed []string
}

// Rules maps the form's type field to its constraints.
var Rules = map[string]Rule{
	"image": {
		Dir:     "treatments",
		MaxSize: 5 * mb,
		Allowed: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	},
	"medical": {
		Dir:     "medical",
		MaxSize: 10 * mb,
		Allowed: []string{
			"application/pdf", "image/jpeg", "image/png", "application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
	},
	"blog": {
		Dir:     "blog",
		MaxSize: 5 * mb,
		Allowed: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	},
	"doctor": {
		Dir:     "doctors",
		MaxSize: 5 * mb,
		Allowed: []string{"image/jpeg", "image/png", "image/webp"},
	},
}

// Kinds returns the accepted type values, sorted.
func Kinds() []string {
	out := make([]string, 0, len(Rules))
	for k := range Rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidationError reports an upload the client must fix.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// FormatSize renders a byte limit the way the forms show it, e.g. "10MB".
func FormatSize(n int64) string {
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%.1fMB", float64(n)/mb)
}

// Result describes a stored upload.
type Result struct {
	URL      string `json:"url"`
	Path     string `json:"-"`
	MIME     string `json:"mime"`
	Size     int64  `json:"size"`
	Filename string `json:"filename"`
}

// Uploader checks uploads against Rules and hands them to a Store.
type Uploader struct {
	store     Store
	urlPrefix string
}

// NewUploader returns an uploader writing to store. URLs are rooted at
// DefaultURLPrefix.
func NewUploader(store Store) *Uploader {
	return &Uploader{store: store, urlPrefix: DefaultURLPrefix}
}

// Upload validates and stores r. size is the size the client declared;
// the stream is still cut off at the rule's limit.
func (u *Uploader) Upload(ctx context.Context, kind, filename string, size int64, r io.Reader) (*Result, error) {
	rule, ok := Rules[kind]
	if !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid upload type %q (expected one of %s)", kind, strings.Join(Kinds(), ", "))}
	}
	if size > rule.MaxSize {
		return nil, tooLarge(kind, rule)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, &ValidationError{Message: "file is empty"}
	}

	mtype := mimetype.Detect(head)
	if !allowed(mtype, rule.Allowed) {
		return nil, &ValidationError{Message: fmt.Sprintf("file type %s is not allowed for %s uploads", mtype.String(), kind)}
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	name := uuid.NewString() + ext

	body := &io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: rule.MaxSize + 1}
	written, err := u.store.Save(ctx, rule.Dir, name, body)
	if err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}
	if written > rule.MaxSize {
		_ = u.store.Remove(rule.Dir, name)
		return nil, tooLarge(kind, rule)
	}

	return &Result{
		URL:      path.Join(u.urlPrefix, rule.Dir, name),
		Path:     path.Join(rule.Dir, name),
		MIME:     mtype.String(),
		Size:     written,
		Filename: filepath.Base(filename),
	}, nil
}

func tooLarge(kind string, rule Rule) error {
	return &ValidationError{Message: fmt.Sprintf("file too large: %s uploads are limited to %s", kind, FormatSize(rule.MaxSize))}
}

func allowed(mtype *mimetype.MIME, list []string) bool {
	for _, m := range list {
		if mtype.Is(m) {
			return true
		}
	}
	return false
}
