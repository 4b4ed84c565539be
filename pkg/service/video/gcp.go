package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	vipb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
	"github.com/secmon-lab/guidebook/pkg/utils/safe"
)

// GCP implements JobAPI with a Cloud Storage bucket for staging and the Video
// Intelligence API for annotation.
type GCP struct {
	storage      *storage.Client
	video        *videointelligence.Client
	bucket       string
	prefix       string
	languageCode string
}

var _ JobAPI = &GCP{}

// GCPOption is a functional option for GCP
type GCPOption func(*GCP)

// WithObjectPrefix sets the object name prefix of staged uploads
func WithObjectPrefix(prefix string) GCPOption {
	return func(g *GCP) {
		g.prefix = strings.Trim(prefix, "/")
	}
}

// WithLanguageCode sets the speech transcription language
func WithLanguageCode(code string) GCPOption {
	return func(g *GCP) {
		g.languageCode = code
	}
}

// NewGCP creates the clients. Call Close when done.
func NewGCP(ctx context.Context, bucket string, opts ...GCPOption) (*GCP, error) {
	if bucket == "" {
		return nil, goerr.New("staging bucket is required")
	}

	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	vc, err := videointelligence.NewClient(ctx)
	if err != nil {
		safe.Close(ctx, sc)
		return nil, goerr.Wrap(err, "failed to create videointelligence client")
	}

	g := &GCP{
		storage:      sc,
		video:        vc,
		bucket:       bucket,
		prefix:       "staging",
		languageCode: "en-US",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Close releases both clients
func (g *GCP) Close() error {
	var errs []error
	if err := g.video.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := g.storage.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return goerr.Wrap(errors.Join(errs...), "failed to close clients")
	}
	return nil
}

func (g *GCP) objectName(localPath string) string {
	name := uuid.Must(uuid.NewV7()).String() + strings.ToLower(filepath.Ext(localPath))
	if g.prefix == "" {
		return name
	}
	return g.prefix + "/" + name
}

func (g *GCP) Submit(ctx context.Context, localPath string) (*Submission, error) {
	object := g.objectName(localPath)
	if err := g.upload(ctx, localPath, object); err != nil {
		return nil, err
	}

	uri := fmt.Sprintf("gs://%s/%s", g.bucket, object)
	op, err := g.video.AnnotateVideo(ctx, &vipb.AnnotateVideoRequest{
		InputUri: uri,
		Features: []vipb.Feature{
			vipb.Feature_SPEECH_TRANSCRIPTION,
			vipb.Feature_LABEL_DETECTION,
			vipb.Feature_TEXT_DETECTION,
		},
		VideoContext: &vipb.VideoContext{
			SpeechTranscriptionConfig: &vipb.SpeechTranscriptionConfig{
				LanguageCode:               g.languageCode,
				EnableAutomaticPunctuation: true,
			},
			TextDetectionConfig: &vipb.TextDetectionConfig{},
		},
	})
	if err != nil {
		if relErr := g.Release(ctx, object); relErr != nil {
			logging.From(ctx).Warn("failed to release staged object", "object", object, "error", relErr)
		}
		return nil, goerr.Wrap(err, "failed to start annotation", goerr.V("uri", uri))
	}

	logging.From(ctx).Info("submitted video annotation", "operation", op.Name(), "uri", uri)
	return &Submission{
		ExternalRef:  op.Name(),
		StagedObject: object,
	}, nil
}

func (g *GCP) upload(ctx context.Context, localPath, object string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return goerr.Wrap(err, "failed to open staged file", goerr.V("path", localPath))
	}
	defer safe.Close(ctx, f)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	w := g.storage.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "video/mp4"
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload staged file",
			goerr.V("bucket", g.bucket),
			goerr.V("object", object),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize upload",
			goerr.V("bucket", g.bucket),
			goerr.V("object", object),
		)
	}
	return nil
}

// Status polls the operation once. A finished operation carrying an error is reported
// as failed; a failure to reach the API is returned as an error.
func (g *GCP) Status(ctx context.Context, externalRef string) (*Status, error) {
	op := g.video.AnnotateVideoOperation(externalRef)
	resp, err := op.Poll(ctx)
	if err != nil {
		if op.Done() {
			return &Status{State: types.ExternalStatusFailed, Reason: err.Error()}, nil
		}
		return nil, goerr.Wrap(err, "failed to poll annotation", goerr.V("operation", externalRef))
	}
	if !op.Done() {
		return &Status{State: types.ExternalStatusProcessing}, nil
	}

	return &Status{
		State:  types.ExternalStatusReady,
		Result: extractResult(resp),
	}, nil
}

func (g *GCP) Release(ctx context.Context, stagedObject string) error {
	if stagedObject == "" {
		return nil
	}
	err := g.storage.Bucket(g.bucket).Object(stagedObject).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return goerr.Wrap(err, "failed to delete staged object",
			goerr.V("bucket", g.bucket),
			goerr.V("object", stagedObject),
		)
	}
	return nil
}

// labelLimit caps how many segment labels are kept for the summary prompt
const labelLimit = 30

func extractResult(resp *vipb.AnnotateVideoResponse) *model.JobResult {
	result := &model.JobResult{}
	if resp == nil || len(resp.AnnotationResults) == 0 || resp.AnnotationResults[0] == nil {
		return result
	}
	ar := resp.AnnotationResults[0]

	for _, tr := range ar.SpeechTranscriptions {
		if tr == nil || len(tr.Alternatives) == 0 || tr.Alternatives[0] == nil {
			continue
		}
		if text := strings.TrimSpace(tr.Alternatives[0].Transcript); text != "" {
			result.Transcripts = append(result.Transcripts, text)
		}
	}

	seen := make(map[string]bool)
	for _, la := range ar.SegmentLabelAnnotations {
		if la == nil || la.Entity == nil || len(result.Labels) >= labelLimit {
			continue
		}
		desc := strings.TrimSpace(la.Entity.Description)
		if desc != "" && !seen[desc] {
			seen[desc] = true
			result.Labels = append(result.Labels, desc)
		}
	}

	seenText := make(map[string]bool)
	for _, ta := range ar.TextAnnotations {
		if ta == nil {
			continue
		}
		text := strings.TrimSpace(ta.Text)
		if text != "" && !seenText[text] {
			seenText[text] = true
			result.Texts = append(result.Texts, text)
		}
	}

	return result
}
