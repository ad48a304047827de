package ingest

import (
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/Nurshot/manga-backend/pkg/utils"
)

// ErrStaging covers remote-host failures while staging a page. Directory
// already existing on the host is not one of them.
var ErrStaging = errors.New("staging failed")

// Stager stages finished page assets on the remote host and yields their
// public URLs. Implementations are used sequentially within one request.
type Stager interface {
	Stage(mangaID int64, chapterNumber int, fileName string, payload []byte) (string, error)
	Close() error
}

// StagerFactory opens one authenticated session per ingestion request.
type StagerFactory func() (Stager, error)

// ftpConn is the slice of the FTP client the stager needs.
type ftpConn interface {
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

type ftpStager struct {
	conn ftpConn
	cfg  utils.StagingConfig
	made map[string]bool // remote dirs ensured during this session
}

// NewFTPStager dials and authenticates a session against the configured
// FTP host. The caller owns the session and must Close it.
func NewFTPStager(cfg utils.StagingConfig) (Stager, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrStaging, addr, err)
	}
	if err := conn.Login(cfg.User, cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("%w: login: %v", ErrStaging, err)
	}
	return &ftpStager{conn: conn, cfg: cfg, made: make(map[string]bool)}, nil
}

func (s *ftpStager) Stage(mangaID int64, chapterNumber int, fileName string, payload []byte) (string, error) {
	dir := path.Join(s.cfg.RootDir, strconv.FormatInt(mangaID, 10), strconv.Itoa(chapterNumber))
	if err := s.ensureDir(dir); err != nil {
		return "", err
	}

	// Buffer through a local temp file; removal must happen whether or not
	// the upload succeeds.
	tmp, err := os.CreateTemp("", "page-*")
	if err != nil {
		return "", fmt.Errorf("%w: temp file: %v", ErrStaging, err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(payload); err != nil {
		return "", fmt.Errorf("%w: write temp file: %v", ErrStaging, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: rewind temp file: %v", ErrStaging, err)
	}

	remote := path.Join(dir, fileName)
	if err := s.conn.Stor(remote, tmp); err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrStaging, remote, err)
	}

	return s.pageURL(mangaID, chapterNumber, fileName), nil
}

// ensureDir walks the remote path one segment at a time from the root,
// creating each intermediate. An already-existing segment is fine.
func (s *ftpStager) ensureDir(dir string) error {
	cur := ""
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" {
			continue
		}
		cur = path.Join(cur, seg)
		if s.made[cur] {
			continue
		}
		if err := s.conn.MakeDir(cur); err != nil && !dirAlreadyExists(err) {
			return fmt.Errorf("%w: mkdir %s: %v", ErrStaging, cur, err)
		}
		s.made[cur] = true
	}
	return nil
}

// dirAlreadyExists reports whether a MakeDir failure means the directory is
// already on the host (550 on common servers).
func dirAlreadyExists(err error) bool {
	var proto *textproto.Error
	if errors.As(err, &proto) {
		return proto.Code == ftp.StatusFileUnavailable
	}
	return false
}

func (s *ftpStager) pageURL(mangaID int64, chapterNumber int, fileName string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/%d/%d/%s", base, mangaID, chapterNumber, fileName)
}

func (s *ftpStager) Close() error {
	if err := s.conn.Quit(); err != nil {
		return fmt.Errorf("close ftp session: %w", err)
	}
	return nil
}
