package ingest

import (
	"errors"
	"io"
	"net/textproto"
	"testing"

	"github.com/jlaffaye/ftp"

	"github.com/Nurshot/manga-backend/pkg/utils"
)

type fakeConn struct {
	mkdirCalls map[string]int
	mkdirErr   map[string]error
	stored     map[string][]byte
	quits      int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		mkdirCalls: make(map[string]int),
		mkdirErr:   make(map[string]error),
		stored:     make(map[string][]byte),
	}
}

func (f *fakeConn) MakeDir(path string) error {
	f.mkdirCalls[path]++
	return f.mkdirErr[path]
}

func (f *fakeConn) Stor(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.stored[path] = data
	return nil
}

func (f *fakeConn) Quit() error {
	f.quits++
	return nil
}

func testFTPStager(conn ftpConn) *ftpStager {
	return &ftpStager{
		conn: conn,
		cfg: utils.StagingConfig{
			RootDir: "manga",
			BaseURL: "http://cdn.test/",
		},
		made: make(map[string]bool),
	}
}

func TestDirAlreadyExists(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "exists"}, true},
		{&textproto.Error{Code: 553, Msg: "denied"}, false},
		{errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := dirAlreadyExists(tc.err); got != tc.want {
			t.Errorf("dirAlreadyExists(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestEnsureDirExistingSegmentsTolerated(t *testing.T) {
	conn := newFakeConn()
	conn.mkdirErr["manga"] = &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "exists"}
	conn.mkdirErr["manga/7"] = &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "exists"}
	s := testFTPStager(conn)

	if err := s.ensureDir("manga/7/1"); err != nil {
		t.Fatalf("ensureDir over existing dirs: %v", err)
	}
	for _, dir := range []string{"manga", "manga/7", "manga/7/1"} {
		if conn.mkdirCalls[dir] != 1 {
			t.Errorf("MakeDir(%s) called %d times, want 1", dir, conn.mkdirCalls[dir])
		}
	}
}

func TestEnsureDirCachesSegments(t *testing.T) {
	conn := newFakeConn()
	s := testFTPStager(conn)

	if err := s.ensureDir("manga/7/1"); err != nil {
		t.Fatal(err)
	}
	if err := s.ensureDir("manga/7/2"); err != nil {
		t.Fatal(err)
	}

	if conn.mkdirCalls["manga"] != 1 || conn.mkdirCalls["manga/7"] != 1 {
		t.Errorf("shared segments re-created: %v", conn.mkdirCalls)
	}
	if conn.mkdirCalls["manga/7/1"] != 1 || conn.mkdirCalls["manga/7/2"] != 1 {
		t.Errorf("leaf segments: %v", conn.mkdirCalls)
	}
}

func TestEnsureDirRealFailure(t *testing.T) {
	conn := newFakeConn()
	conn.mkdirErr["manga"] = &textproto.Error{Code: 553, Msg: "denied"}
	s := testFTPStager(conn)

	err := s.ensureDir("manga/7/1")
	if !errors.Is(err, ErrStaging) {
		t.Errorf("got %v, want ErrStaging", err)
	}
}

func TestStageUploadsAndBuildsURL(t *testing.T) {
	conn := newFakeConn()
	s := testFTPStager(conn)

	url, err := s.Stage(7, 3, "1.jpg", []byte("payload"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if url != "http://cdn.test/7/3/1.jpg" {
		t.Errorf("url = %q", url)
	}
	if string(conn.stored["manga/7/3/1.jpg"]) != "payload" {
		t.Errorf("stored = %v", conn.stored)
	}
}

func TestCloseQuitsSession(t *testing.T) {
	conn := newFakeConn()
	s := testFTPStager(conn)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if conn.quits != 1 {
		t.Errorf("quits = %d, want 1", conn.quits)
	}
}
