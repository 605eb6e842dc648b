package labels

import (
	"errors"
	"fmt"
	"sort"

	git "github.com/go-git/go-git/v5"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/rs/zerolog/log"
)

// AnnotationBranch is not part of the OCI annotation set.
const AnnotationBranch = "org.opencontainers.image.branch"

// Follow:
// https://github.com/opencontainers/image-spec/blob/main/annotations.md
//
// Collect reads git metadata of the repository containing dir. Creation time
// is left out on purpose so that repeated builds get the same arguments.
func Collect(dir, version string) map[string]string {
	labels := Version(version)

	originUrl, hexsha, branch, err := readGitRepo(dir)
	if err != nil {
		log.Warn().Err(err).Msg("Not being able to read git repo metadata. Skipping.")
	} else {
		if originUrl != "" {
			labels[ocispec.AnnotationSource] = originUrl
		}
		if hexsha != "" {
			labels[ocispec.AnnotationRevision] = hexsha
		}
		if branch != "" {
			labels[AnnotationBranch] = branch
		}
	}

	log.Debug().Interface("labels", labels).Msg("Adding OCI")
	return labels
}

// Version returns the OCI version label alone, or no labels for an empty
// version.
func Version(version string) map[string]string {
	labels := map[string]string{}
	if version != "" {
		labels[ocispec.AnnotationVersion] = version
	}
	return labels
}

// ToArgs renders labels as --label flags in key order.
func ToArgs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := []string{}
	for _, k := range keys {
		args = append(args, "--label", k+"="+labels[k])
	}
	return args
}

func readGitRepo(path string) (originURL string, commitHex string, branchName string, err error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			// Return nothing if it's not a Git repository
			return "", "", "", nil
		}
		return "", "", "", fmt.Errorf("failed to open repository: %w", err)
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return "", "", "", fmt.Errorf("failed to list remotes: %w", err)
	}

	for _, remote := range remotes {
		if remote.Config().Name == "origin" {
			if len(remote.Config().URLs) > 0 {
				originURL = remote.Config().URLs[0]
			}
			break
		}
	}

	head, err := repo.Head()
	if err != nil {
		return originURL, "", "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	commitHex = head.Hash().String()

	if head.Name().IsBranch() {
		branchName = head.Name().Short()
	}

	return originURL, commitHex, branchName, nil
}
