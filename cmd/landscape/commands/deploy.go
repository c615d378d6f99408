package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bayoss/landscape2/internal/deploy"
)

// DeployCmd groups the deploy targets.
type DeployCmd struct {
	S3 DeployS3Cmd `cmd:"" name:"s3" help:"Upload the website to an S3 bucket"`
}

// DeployS3Cmd implements 'deploy s3'.
type DeployS3Cmd struct {
	Bucket      string `name:"bucket" help:"Destination bucket" required:""`
	ContentDir  string `name:"content-dir" help:"Built website directory" required:"" type:"path"`
	Prefix      string `name:"prefix" help:"Key prefix inside the bucket"`
	Region      string `name:"region" help:"AWS region (defaults to the AWS configuration)"`
	Endpoint    string `name:"endpoint" help:"Custom S3 endpoint (S3-compatible stores)"`
	PathStyle   bool   `name:"path-style" help:"Use path-style bucket addressing"`
	Concurrency int    `name:"concurrency" help:"Uploads in flight" default:"8"`
}

func (d *DeployS3Cmd) Run(_ *Global, _ *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	u, err := deploy.NewS3(ctx, deploy.Options{
		Bucket:      d.Bucket,
		Prefix:      d.Prefix,
		Region:      d.Region,
		Endpoint:    d.Endpoint,
		PathStyle:   d.PathStyle,
		Concurrency: d.Concurrency,
	})
	if err != nil {
		return err
	}
	res, err := u.Deploy(ctx, d.ContentDir)
	if err != nil {
		return err
	}
	fmt.Printf("Deployed to s3://%s: %d uploaded, %d unchanged\n", d.Bucket, res.Uploaded, res.Skipped)
	return nil
}
