package fetcher

import (
	"context"
	"net/url"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
)

// FTPFetcher lists media files on public FTP archives. Sources of the
// archive family point their endpoints at ftp:// directory URLs.
type FTPFetcher struct {
	Timeout time.Duration

	// dial is swappable for tests.
	dial func(addr string, opts ...ftp.DialOption) (*ftp.ServerConn, error)
}

// NewFTPFetcher creates an FTPFetcher with the given connect timeout.
func NewFTPFetcher(timeout time.Duration) *FTPFetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &FTPFetcher{Timeout: timeout, dial: ftp.Dial}
}

// ListDir connects anonymously and lists the files under dirURL.
func (f *FTPFetcher) ListDir(ctx context.Context, dirURL string) ([]RemoteFile, error) {
	u, err := url.Parse(dirURL)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: parse url %s", dirURL)
	}
	if u.Scheme != "ftp" {
		return nil, eris.Errorf("ftp: unsupported scheme %q in %s", u.Scheme, dirURL)
	}

	addr := u.Host
	if u.Port() == "" {
		addr += ":21"
	}

	conn, err := f.dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(f.Timeout))
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: dial %s", addr)
	}
	defer conn.Quit()

	user := u.User.Username()
	pass, _ := u.User.Password()
	if user == "" {
		user, pass = "anonymous", "anonymous"
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, eris.Wrapf(err, "ftp: login %s", addr)
	}

	entries, err := conn.List(u.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: list %s", u.Path)
	}

	var files []RemoteFile
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		files = append(files, RemoteFile{
			Name:      e.Name,
			SizeBytes: int64(e.Size),
			Path:      path.Join(u.Path, e.Name),
		})
	}
	return files, nil
}
