package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/nats-io/nats.go"
	"github.com/souvik131/optionlab/pricing"
)

// Artifact is one file produced by a run, with the surface it holds.
type Artifact struct {
	Path    string
	Surface *Surface
}

// Sink receives the artifacts of every completed run.
type Sink interface {
	Publish(ctx context.Context, artifacts []Artifact) error
}

// S3Sink uploads each artifact under Prefix in Bucket.
type S3Sink struct {
	Bucket string
	Prefix string

	uploader s3manageriface.UploaderAPI
}

// NewS3Sink uses the default AWS credential chain for region.
func NewS3Sink(bucket, region, prefix string) (*S3Sink, error) {
	if bucket == "" {
		return nil, errors.New("s3 sink: bucket is empty")
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(region)},
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session failed: %w", err)
	}
	return NewS3SinkWithUploader(bucket, prefix, s3manager.NewUploader(sess)), nil
}

func NewS3SinkWithUploader(bucket, prefix string, uploader s3manageriface.UploaderAPI) *S3Sink {
	return &S3Sink{Bucket: bucket, Prefix: prefix, uploader: uploader}
}

// Key is the object key an artifact is stored under.
func (s *S3Sink) Key(a Artifact) string {
	return path.Join(s.Prefix, filepath.Base(a.Path))
}

func (s *S3Sink) Publish(ctx context.Context, artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := s.upload(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Sink) upload(ctx context.Context, a Artifact) error {
	file, err := os.Open(a.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key(a)),
		Body:        file,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", a.Path, err)
	}
	return nil
}

// Summary is the message published for each surface.
type Summary struct {
	Measure     string        `json:"measure"`
	X           string        `json:"x"`
	Y           string        `json:"y"`
	Rows        int           `json:"rows"`
	Cols        int           `json:"cols"`
	Min         pricing.Value `json:"min"`
	Max         pricing.Value `json:"max"`
	File        string        `json:"file"`
	GeneratedAt time.Time     `json:"generated_at"`
}

func summarize(a Artifact, now time.Time) Summary {
	lo, hi := a.Surface.Range()
	return Summary{
		Measure:     a.Surface.Measure,
		X:           a.Surface.X.Name,
		Y:           a.Surface.Y.Name,
		Rows:        a.Surface.Values.Rows(),
		Cols:        a.Surface.Values.Cols(),
		Min:         pricing.Value(lo),
		Max:         pricing.Value(hi),
		File:        filepath.Base(a.Path),
		GeneratedAt: now.UTC(),
	}
}

// publisher is the part of *nats.Conn the sink needs.
type publisher interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSSink publishes a JSON Summary per artifact on Subject + "." + measure.
type NATSSink struct {
	Subject string

	conn publisher
	now  func() time.Time
}

func NewNATSSink(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(url, nats.Name("optionlab"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newNATSSink(nc, subject), nil
}

func newNATSSink(conn publisher, subject string) *NATSSink {
	return &NATSSink{Subject: subject, conn: conn, now: time.Now}
}

func (s *NATSSink) Publish(ctx context.Context, artifacts []Artifact) error {
	for _, a := range artifacts {
		data, err := json.Marshal(summarize(a, s.now()))
		if err != nil {
			return err
		}
		if err := s.conn.Publish(s.Subject+"."+a.Surface.Measure, data); err != nil {
			return fmt.Errorf("publish %s: %w", a.Surface.Measure, err)
		}
	}
	return s.conn.FlushWithContext(ctx)
}

// Close drains the connection when it is a real NATS connection.
func (s *NATSSink) Close() error {
	if nc, ok := s.conn.(*nats.Conn); ok {
		return nc.Drain()
	}
	return nil
}
