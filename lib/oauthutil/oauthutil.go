// Package oauthutil makes authorised HTTP clients for the Google APIs
// from credentials obtained outside driveclone
package oauthutil

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Credentials says where to find the credentials for a client.
//
// They are tried in this order
//
//	ServiceAccountCredentials - service account JSON blob
//	ServiceAccountFile - path to a service account JSON file
//	TokenFile - path to a saved authorized user token file
//	application default credentials
type Credentials struct {
	ServiceAccountFile        string
	ServiceAccountCredentials string
	TokenFile                 string
	Impersonate               string // user to impersonate with a service account
}

// Context returns a context which makes the oauth2 library use client
// for its own requests
func Context(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

// NewClient returns an HTTP client authorised for scopes using the
// credentials in c.
//
// baseClient may be nil in which case http.DefaultClient is used for
// the token exchange.
func NewClient(ctx context.Context, c *Credentials, baseClient *http.Client, scopes ...string) (*http.Client, error) {
	if baseClient != nil {
		ctx = Context(ctx, baseClient)
	}
	serviceAccount := []byte(c.ServiceAccountCredentials)
	if len(serviceAccount) == 0 && c.ServiceAccountFile != "" {
		var err error
		serviceAccount, err = os.ReadFile(os.ExpandEnv(c.ServiceAccountFile))
		if err != nil {
			return nil, errors.Wrap(err, "error opening service account credentials file")
		}
	}
	if len(serviceAccount) != 0 {
		conf, err := google.JWTConfigFromJSON(serviceAccount, scopes...)
		if err != nil {
			return nil, errors.Wrap(err, "error processing service account credentials")
		}
		if c.Impersonate != "" {
			conf.Subject = c.Impersonate
		}
		fs.Debugf(nil, "Using service account %q", conf.Email)
		return oauth2.NewClient(ctx, conf.TokenSource(ctx)), nil
	}
	if c.TokenFile != "" {
		data, err := os.ReadFile(os.ExpandEnv(c.TokenFile))
		if err != nil {
			return nil, errors.Wrap(err, "error opening token file")
		}
		creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
		if err != nil {
			return nil, errors.Wrap(err, "error processing token file")
		}
		fs.Debugf(nil, "Using token from %q", c.TokenFile)
		return oauth2.NewClient(ctx, creds.TokenSource), nil
	}
	creds, err := google.FindDefaultCredentials(ctx, scopes...)
	if err != nil {
		return nil, errors.Wrap(err, "no credentials configured and no application default credentials found")
	}
	fs.Debugf(nil, "Using application default credentials")
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}
