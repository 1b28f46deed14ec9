package main

import (
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awssession "github.com/aws/aws-sdk-go/aws/session"

	"review-eval-app/config"
	"review-eval-app/internal/dataset"
	"review-eval-app/internal/helpers"
	"review-eval-app/internal/pdfstore"
	"review-eval-app/internal/results"
	"review-eval-app/internal/session"
	"review-eval-app/internal/web"
)

func main() {
	// Load environment variables
	helpers.LoadEnv()
	cfg := config.Load()
	log.Println("Configuration loaded successfully.")

	// Metadata and review datasets are read once here and cached for the
	// process lifetime; edit the files, restart the server.
	snap := dataset.Load(cfg)
	log.Printf("Loaded %d users\n", len(snap.UserNames()))

	// Set up the PDF source
	var pdfs *pdfstore.Source
	if cfg.PDF.Source == "s3" {
		awsSecretKey := helpers.GetEnvVariable("AWS_SECRET_ACCESS_KEY")
		awsAccessKey := helpers.GetEnvVariable("AWS_ACCESS_KEY_ID")
		sess, err := awssession.NewSession(&aws.Config{
			Region:      aws.String(cfg.PDF.AWSRegion),
			Credentials: credentials.NewStaticCredentials(awsAccessKey, awsSecretKey, ""),
		})
		if err != nil {
			log.Fatal("Error creating AWS session:", err)
		}
		pdfs = pdfstore.NewS3(sess, cfg.PDF.S3Bucket)
		log.Println("Serving PDFs from S3 bucket:", cfg.PDF.S3Bucket)
	} else {
		pdfs = pdfstore.NewLocal()
	}

	// Rater sessions and the results log writer
	sessions := session.NewStore(cfg.Session.TTL)
	sessions.StartJanitor(cfg.Session.SweepInterval)
	writer := results.NewWriter(cfg.ResultsPath)

	r := web.NewRouter(snap, sessions, writer, pdfs)

	log.Println("Listening on port " + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped:", err)
	}
}
