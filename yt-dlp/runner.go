package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"ytdownloader/logger"
	"ytdownloader/models"
	util "ytdownloader/utils"

	"github.com/araddon/dateparse"
)

// Runner is the Provider that shells out to the yt-dlp executable.
type Runner struct {
	binary string
	active func() int
}

// New returns a runner for binary. active reports the number of downloads in
// flight and tunes fragment concurrency; it may be nil.
func New(binary string, active func() int) *Runner {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Runner{binary: binary, active: active}
}

func (r *Runner) Name() string { return "ytdlp" }

func (r *Runner) ValidateURL(rawURL string) bool {
	info := util.DetectPlatform(rawURL)
	if !info.IsSupported {
		logger.Component("YTDLP").Debug().Str("url", rawURL).Str("reason", info.Reason).Msg("URL rejected")
		return false
	}
	logger.Component("YTDLP").Debug().Str("url", rawURL).Str("platform", info.Platform).Msg("URL accepted")
	return true
}

func (r *Runner) FetchMetadata(ctx context.Context, rawURL string) (*models.RawVideo, error) {
	videoURL := util.SanitizeURL(rawURL)

	cmd := exec.CommandContext(ctx, r.binary,
		"-J",
		"--no-playlist",
		"--no-warnings",
		videoURL,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp exec error: %w | output: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseInfo(output)
}

// OpenStream runs yt-dlp with the encoding's format id and relays its stdout.
func (r *Runner) OpenStream(ctx context.Context, rawURL string, format models.FormatDescriptor) (io.ReadCloser, error) {
	if format.SourceID == "" {
		return nil, errors.New("format has no yt-dlp format id")
	}

	active := 1
	if r.active != nil {
		active = r.active()
	}

	cmd := exec.CommandContext(ctx, r.binary,
		"-f", format.SourceID,
		"-o", "-",
		"--no-playlist",
		"--no-warnings",
		"--no-part",
		"--quiet",
		util.FragmentsFlag(active, format.Quality),
		util.SanitizeURL(rawURL),
	)
	stream := &cmdStream{cmd: cmd}
	cmd.Stderr = &stream.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start yt-dlp: %w", err)
	}
	stream.stdout = stdout

	logger.Component("YTDLP").Debug().Str("format_id", format.SourceID).Int("pid", cmd.Process.Pid).Msg("yt-dlp stream started")
	return stream, nil
}

// cmdStream reads a running yt-dlp's stdout. A non-zero exit turns the final
// EOF into an error so truncated output is never mistaken for success.
type cmdStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	once    sync.Once
	waitErr error
}

func (s *cmdStream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		if werr := s.wait(); werr != nil {
			return n, fmt.Errorf("yt-dlp exited: %w | %s", werr, strings.TrimSpace(s.stderr.String()))
		}
	}
	return n, err
}

// Close stops the process if it is still running.
func (s *cmdStream) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.wait()
	return nil
}

func (s *cmdStream) wait() error {
	s.once.Do(func() { s.waitErr = s.cmd.Wait() })
	return s.waitErr
}

// ParseInfo converts `yt-dlp -J` output. yt-dlp lists formats worst first, so
// the order is reversed to rank them best first.
func ParseInfo(output []byte) (*models.RawVideo, error) {
	var data models.YTDLPInfo
	if err := json.Unmarshal(output, &data); err != nil {
		return nil, fmt.Errorf("yt-dlp parse error: %w", err)
	}

	author := data.Uploader
	if author == "" {
		author = data.Channel
	}

	raw := &models.RawVideo{
		ID:            data.ID,
		Title:         data.Title,
		LengthSeconds: int(data.Duration),
		Author:        author,
		ViewCount:     data.ViewCount,
		UploadDate:    normalizeDate(data.UploadDate),
		Description:   data.Description,
	}

	for _, t := range data.Thumbnails {
		if t.URL != "" {
			raw.Thumbnails = append(raw.Thumbnails, models.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height})
		}
	}
	if len(raw.Thumbnails) == 0 && data.Thumbnail != "" {
		raw.Thumbnails = []models.Thumbnail{{URL: data.Thumbnail}}
	}

	for i := len(data.Formats) - 1; i >= 0; i-- {
		raw.Formats = append(raw.Formats, toRawFormat(data.Formats[i]))
	}
	return raw, nil
}

func toRawFormat(f models.YTDLPFormat) models.RawFormat {
	hasVideo := hasCodec(f.Vcodec)
	hasAudio := hasCodec(f.Acodec)

	rf := models.RawFormat{
		SourceID: f.FormatID,
		HasVideo: hasVideo,
		HasAudio: hasAudio,
		Bitrate:  int(f.TBR * 1000),
	}
	if itag, err := strconv.Atoi(f.FormatID); err == nil {
		rf.Itag = itag
	}

	// filesize_approx is good enough for display and progress but must never
	// be declared as Content-Length.
	rf.ContentLength = f.Filesize
	rf.ExactSize = f.Filesize > 0
	if rf.ContentLength == 0 {
		rf.ContentLength = f.FilesizeApprox
	}

	switch {
	case hasVideo && f.Height > 0:
		rf.QualityLabel = fmt.Sprintf("%dp", f.Height)
	case hasVideo:
		rf.QualityLabel = f.FormatNote
	case hasAudio:
		rf.AudioQuality = f.FormatNote
	}

	if f.Ext != "" {
		kind := "video"
		if !hasVideo {
			kind = "audio"
		}
		var codecs []string
		for _, c := range []string{f.Vcodec, f.Acodec} {
			if hasCodec(c) {
				codecs = append(codecs, c)
			}
		}
		rf.MimeType = kind + "/" + f.Ext
		if len(codecs) > 0 {
			rf.MimeType += fmt.Sprintf(`; codecs="%s"`, strings.Join(codecs, ", "))
		}
	}
	return rf
}

func hasCodec(codec string) bool {
	return codec != "" && codec != "none"
}

// normalizeDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD.
func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
