package history

import (
	"context"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	apperrors "github.com/rohankatakam/defacto/internal/errors"
)

func (l *Loader) openRepo() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(l.opts.RepoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, apperrors.GitError(err, "open repository").WithContext("repo", l.opts.RepoPath)
	}
	return repo, nil
}

func (l *Loader) headGoGit() (string, error) {
	repo, err := l.openRepo()
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", apperrors.GitError(err, "resolve HEAD")
	}
	return ref.Hash().String(), nil
}

// loadGoGit mirrors `git log --name-only --no-merges` without the git binary.
func (l *Loader) loadGoGit(ctx context.Context) ([]Commit, error) {
	repo, err := l.openRepo()
	if err != nil {
		return nil, err
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, apperrors.GitError(err, "resolve HEAD")
	}

	iter, err := repo.Log(&git.LogOptions{From: ref.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, apperrors.GitError(err, "walk log")
	}
	defer iter.Close()

	col := &collector{filter: l.opts.Filter, logger: l.logger}
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.NumParents() > 1 {
			return nil
		}
		files, err := changedFiles(ctx, c)
		if err != nil {
			return apperrors.GitError(err, "diff commit").WithContext("commit", c.Hash.String())
		}
		col.add(Commit{
			ID:     c.Hash.String(),
			Author: c.Author.Email,
			Day:    DayOf(c.Author.When, l.opts.Location),
			Files:  files,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return col.done(), nil
}

// changedFiles lists the paths a commit touched. Renames report the new
// path, deletions the old one. A root commit touches its whole tree.
func changedFiles(ctx context.Context, c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var files []string
	if c.NumParents() == 0 {
		err := tree.Files().ForEach(func(f *object.File) error {
			files = append(files, f.Name)
			return nil
		})
		return files, err
	}

	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, &object.DiffTreeOptions{DetectRenames: true})
	if err != nil {
		return nil, err
	}
	for _, ch := range changes {
		name := ch.To.Name
		if name == "" {
			name = ch.From.Name
		}
		files = append(files, name)
	}
	return files, nil
}
