package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/yeremiapane/food-listing-dashboard/config"
	"github.com/yeremiapane/food-listing-dashboard/export"
	"github.com/yeremiapane/food-listing-dashboard/reports"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

// ObjectUploader is the part of the S3 client the archive needs.
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchivedReport describes an uploaded export.
type ArchivedReport struct {
	Bucket   string    `json:"bucket"`
	Key      string    `json:"key"`
	FileName string    `json:"file_name"`
	Size     int       `json:"size"`
	Rows     int       `json:"rows"`
	At       time.Time `json:"archived_at"`
}

// ReportArchive stores CSV snapshots of report results in a bucket so
// exports survive past the browser download.
type ReportArchive struct {
	client ObjectUploader
	bucket string
	prefix string
	now    func() time.Time
}

func NewReportArchive(client ObjectUploader, bucket, prefix string) *ReportArchive {
	return &ReportArchive{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// NewS3ReportArchive builds an archive from the AWS default credential
// chain. It returns nil when no bucket is configured.
func NewS3ReportArchive(ctx context.Context, cfg config.ExportConfig) (*ReportArchive, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	utils.InfoLogger.WithField("bucket", cfg.Bucket).Info("report archive enabled")
	return NewReportArchive(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
}

// ObjectKey is <prefix>/<report key>/<timestamp>-<uuid>.csv.
func (a *ReportArchive) ObjectKey(reportKey string, at time.Time) string {
	name := fmt.Sprintf("%s-%s.csv", at.UTC().Format("20060102-150405"), uuid.NewString())
	return path.Join(a.prefix, reportKey, name)
}

// Archive renders res as CSV and uploads it.
func (a *ReportArchive) Archive(ctx context.Context, report reports.Report, res *reports.Result) (*ArchivedReport, error) {
	var buf bytes.Buffer
	if err := export.CSV(&buf, res); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}

	at := a.now()
	key := a.ObjectKey(report.Key, at)
	fileName := export.FileName(report.Label, "csv")
	size := buf.Len()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(a.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(buf.Bytes()),
		ContentType:        aws.String(export.ContentTypeCSV),
		ContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": fileName})),
		Metadata: map[string]string{
			"report": report.Key,
			"rows":   fmt.Sprint(len(res.Rows)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s to s3://%s: %w", key, a.bucket, err)
	}

	utils.InfoLogger.WithField("key", key).Infof("archived report %s", report.Key)
	return &ArchivedReport{
		Bucket:   a.bucket,
		Key:      key,
		FileName: fileName,
		Size:     size,
		Rows:     len(res.Rows),
		At:       at,
	}, nil
}
