// Package uploader ships package files to Azure Blob Storage. The transfer
// itself is delegated to azcopy so its output streams straight into the
// Jenkins console; this package renames the file to its unique blob name,
// makes sure the container exists and signs the destination.
package uploader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
	"github.com/ci-scripts/jenkins-helper/buildmeta"
	"github.com/ci-scripts/jenkins-helper/internal/osutil"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/shell"
	"github.com/ci-scripts/jenkins-helper/uuidfile"
	"github.com/dustin/go-humanize"
)

// DefaultSASExpiry is how long a generated SAS token stays valid when
// Config.SASExpiry is zero.
const DefaultSASExpiry = time.Hour

// Config is configuration for the Uploader.
type Config struct {
	// StorageAccount is the Azure storage account receiving packages.
	StorageAccount string

	// StorageKey is the account's shared key. When empty the uploader falls
	// back to the default Azure credential chain and signs no SAS token, in
	// which case azcopy must be able to authenticate on its own.
	StorageKey string

	// ContainerName is the blob container packages land in.
	ContainerName string

	// ServiceURL overrides the storage endpoint, primarily for testing.
	// Defaults to https://<account>.blob.core.windows.net.
	ServiceURL string

	// SASExpiry is the validity window of a generated SAS token. Zero means
	// DefaultSASExpiry.
	SASExpiry time.Duration

	// AzcopyPath is the azcopy binary to invoke. Defaults to "azcopy" on
	// the PATH.
	AzcopyPath string
}

// Uploader uploads one file at a time to a blob container.
type Uploader struct {
	conf   Config
	sh     *shell.Shell
	client *service.Client
	cred   *service.SharedKeyCredential // nil without a storage key
	logger logger.Logger
}

// New authenticates a service client for conf and returns an Uploader that
// runs azcopy through sh.
func New(l logger.Logger, sh *shell.Shell, conf Config) (*Uploader, error) {
	if conf.SASExpiry == 0 {
		conf.SASExpiry = DefaultSASExpiry
	}
	if conf.AzcopyPath == "" {
		conf.AzcopyPath = "azcopy"
	}
	if conf.ServiceURL == "" {
		conf.ServiceURL = fmt.Sprintf("https://%s.blob.core.windows.net", conf.StorageAccount)
	}

	if conf.StorageKey == "" {
		l.Debug("Connecting to Azure Blob Storage using Default Azure Credential")
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating default Azure credential: %w", err)
		}
		client, err := service.NewClient(conf.ServiceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("creating Azure Blob storage client with default Azure credential: %w", err)
		}
		return &Uploader{conf: conf, sh: sh, client: client, logger: l}, nil
	}

	l.Debug("Connecting to Azure Blob Storage using Shared Key Credential")
	cred, err := service.NewSharedKeyCredential(conf.StorageAccount, conf.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("creating Azure shared key credential: %w", err)
	}
	client, err := service.NewClientWithSharedKeyCredential(conf.ServiceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure Blob storage client with a shared key credential: %w", err)
	}
	return &Uploader{conf: conf, sh: sh, client: client, cred: cred, logger: l}, nil
}

// Upload renames the file at path to its unique blob name, makes sure the
// container exists, copies the file up with azcopy and returns the package
// metadata for registration. The rename is permanent: on later failure the
// file stays under its new name.
func (u *Uploader) Upload(ctx context.Context, path string) (*buildmeta.Package, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if !osutil.FileExists(abs) {
		return nil, fmt.Errorf("file not found: %s", abs)
	}

	packageName := filepath.Base(abs)
	u.logger.Info("Package name: %s", packageName)

	renamed, err := uuidfile.Rename(abs)
	if err != nil {
		return nil, fmt.Errorf("renaming %s: %w", abs, err)
	}
	u.logger.Info("Renamed file to %s", renamed)

	if err := u.ensureContainer(ctx); err != nil {
		return nil, err
	}

	destination, err := u.destinationURL(filepath.Base(renamed))
	if err != nil {
		return nil, err
	}

	pkg, err := buildmeta.NewPackage(packageName, renamed)
	if err != nil {
		return nil, err
	}

	u.logger.Info("Uploading %s (%s) to Azure Storage", renamed, humanize.IBytes(uint64(pkg.Size)))

	if err := u.sh.Run(ctx, u.conf.AzcopyPath, "copy", renamed, destination, "--overwrite=true"); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", renamed, err)
	}

	u.logger.Info("Successfully uploaded %s to Azure Storage", abs)
	return pkg, nil
}

// ensureContainer creates the container, tolerating one that already
// exists.
func (u *Uploader) ensureContainer(ctx context.Context) error {
	_, err := u.client.NewContainerClient(u.conf.ContainerName).Create(ctx, nil)
	switch {
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		u.logger.Debug("Container %s already exists", u.conf.ContainerName)
		return nil
	case err != nil:
		return fmt.Errorf("creating container %s: %w", u.conf.ContainerName, err)
	}

	u.logger.Info("Container %s created", u.conf.ContainerName)
	return nil
}

// destinationURL is the blob destination handed to azcopy, carrying an
// account SAS token when we hold the shared key.
func (u *Uploader) destinationURL(blobName string) (string, error) {
	destination := fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(u.conf.ServiceURL, "/"), u.conf.ContainerName, blobName)

	if u.cred == nil {
		return destination, nil
	}

	permissions := sas.AccountPermissions{Read: true, Write: true, Add: true, Create: true}
	resources := sas.AccountResourceTypes{Container: true, Object: true}

	values := sas.AccountSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		ExpiryTime:    time.Now().UTC().Add(u.conf.SASExpiry),
		Permissions:   permissions.String(),
		ResourceTypes: resources.String(),
	}

	params, err := values.SignWithSharedKey(u.cred)
	if err != nil {
		return "", fmt.Errorf("generating account SAS: %w", err)
	}

	return destination + "?" + params.Encode(), nil
}
