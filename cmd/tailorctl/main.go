package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tailor-portal/internal/downloader"
	"tailor-portal/internal/portalclient"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tailorctl",
		Short:         "Request tailored resumes from the portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newTailorCommand())
	cmd.AddCommand(newDownloadCommand())
	return cmd
}

type portalFlags struct {
	portal string
	token  string
	out    string
}

func (f *portalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.portal, "portal", envOr("PORTAL_URL", "http://localhost:3000"), "Base URL of the portal API")
	cmd.Flags().StringVar(&f.token, "token", os.Getenv("PORTAL_TOKEN"), "Bearer token (defaults to $PORTAL_TOKEN)")
	cmd.Flags().StringVar(&f.out, "out", ".", "Directory the document is saved into")
}

func (f *portalFlags) client() (*portalclient.Client, error) {
	return portalclient.New(f.portal, portalclient.StaticToken(f.token))
}

func newTailorCommand() *cobra.Command {
	var (
		flags    portalFlags
		resumeID int64
		jobID    int64
		company  string
	)

	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Tailor a resume to a job and save the PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			client, err := flags.client()
			if err != nil {
				return err
			}
			return save(ctx, flags.out, func(ctx context.Context) (portalclient.Document, error) {
				return client.Tailor(ctx, resumeID, jobID, company)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&resumeID, "resume", 0, "Resume ID")
	cmd.Flags().Int64Var(&jobID, "job", 0, "Job ID")
	cmd.Flags().StringVar(&company, "company", "", "Job company, used for the default filename")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newDownloadCommand() *cobra.Command {
	var (
		flags  portalFlags
		fileID string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a stored artifact by file ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			client, err := flags.client()
			if err != nil {
				return err
			}
			return save(ctx, flags.out, func(ctx context.Context) (portalclient.Document, error) {
				return client.Download(ctx, fileID)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&fileID, "file", "", "Stored file ID")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// save runs fetch through a download session and writes the result into dir.
func save(ctx context.Context, dir string, fetch func(context.Context) (portalclient.Document, error)) error {
	browser := &downloader.FileBrowser{Dir: dir}
	trigger := &downloader.Trigger{Browser: browser}
	session := &downloader.Session{
		Trigger: trigger,
		Run: func(ctx context.Context) (downloader.Blob, string, error) {
			doc, err := fetch(ctx)
			if err != nil {
				return downloader.Blob{}, "", err
			}
			return downloader.Blob{Data: doc.Data, Type: "application/pdf"}, doc.Filename, nil
		},
	}

	fmt.Fprintln(os.Stderr, "Tailoring...")
	if err := session.Tailor(ctx); err != nil {
		return err
	}
	if err := session.Download(); err != nil {
		return err
	}
	trigger.Wait()

	for _, path := range browser.Saved() {
		fmt.Fprintln(os.Stdout, path)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
