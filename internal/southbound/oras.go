// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package southbound

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"
)

const (
	// Screenshots are small, a couple of minutes is plenty for a push.
	orasPushTimeout = 2 * time.Minute

	ScreenshotArtifactType = "application/vnd.messaging-console-tests.screenshots.v1"
	ScreenshotMediaType    = "image/png"
)

// Oras publishes failure screenshots as an OCI artifact
type Oras struct {
	target     oras.Target
	repository string
}

// NewOras pushes to registry/repository
func NewOras(registry string, repository string, plainHTTP bool) (*Oras, error) {
	ref := registry + "/" + repository
	log.Infof("ORAS repository %s", ref)
	repo, err := remote.NewRepository(ref)
	if err != nil {
		return nil, err
	}
	repo.PlainHTTP = plainHTTP

	repo.Client = &auth.Client{
		Client: retry.DefaultClient,
		Cache:  auth.NewCache(),
	}
	return NewOrasFor(repo, ref), nil
}

// NewOrasFor pushes to an arbitrary oras target
func NewOrasFor(target oras.Target, repository string) *Oras {
	return &Oras{
		target:     target,
		repository: repository,
	}
}

func (o *Oras) Repository() string {
	return o.repository
}

// Publish packs files into one artifact, one layer per file titled with its base name, and pushes it as tag
func (o *Oras) Publish(ctx context.Context, files []string, tag string) (ocispec.Descriptor, error) {
	if len(files) == 0 {
		return ocispec.Descriptor{}, fmt.Errorf("no files to publish")
	}
	ctx, cancel := context.WithTimeout(ctx, orasPushTimeout)
	defer cancel()

	store := memory.New()
	layers := make([]ocispec.Descriptor, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return ocispec.Descriptor{}, err
		}
		desc := content.NewDescriptorFromBytes(ScreenshotMediaType, data)
		desc.Annotations = map[string]string{
			ocispec.AnnotationTitle: filepath.Base(path),
		}
		if err := store.Push(ctx, desc, bytes.NewReader(data)); err != nil {
			return ocispec.Descriptor{}, err
		}
		layers = append(layers, desc)
	}

	manifest, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ScreenshotArtifactType, oras.PackManifestOptions{
		Layers: layers,
	})
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	if err := store.Tag(ctx, manifest, tag); err != nil {
		return ocispec.Descriptor{}, err
	}

	desc, err := oras.Copy(ctx, store, tag, o.target, tag, oras.DefaultCopyOptions)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("pushing %s:%s: %w", o.repository, tag, err)
	}
	log.Infof("Published %d screenshots to %s:%s", len(files), o.repository, tag)
	return desc, nil
}
