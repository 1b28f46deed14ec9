// Package pdfstore serves the original paper PDFs, either from the local
// per-collection directories or from an S3 bucket laid out with the same
// keys.
package pdfstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"review-eval-app/internal/dataset"
)

type Source struct {
	bucket string
	s3Svc  *s3.S3
}

func NewLocal() *Source {
	return &Source{}
}

func NewS3(sess *session.Session, bucket string) *Source {
	return &Source{
		bucket: bucket,
		s3Svc:  s3.New(sess),
	}
}

// Fetch returns the PDF bytes for a paper. The paper's PDF path doubles as
// the S3 object key.
func (s *Source) Fetch(paper dataset.Paper) ([]byte, error) {
	if s.s3Svc == nil {
		return os.ReadFile(paper.PDFPath)
	}

	output, err := s.s3Svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filepath.ToSlash(paper.PDFPath)),
	})
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			fmt.Println("Error closing S3 response body:", err)
		}
	}(output.Body)

	return io.ReadAll(output.Body)
}

// Available reports whether the paper's PDF exists, without downloading it.
func (s *Source) Available(paper dataset.Paper) bool {
	if s.s3Svc == nil {
		_, err := os.Stat(paper.PDFPath)
		return err == nil
	}

	_, err := s.s3Svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filepath.ToSlash(paper.PDFPath)),
	})
	return err == nil
}
