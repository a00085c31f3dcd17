/*
Package dictionary provides the narrow reader collaborators the core
packages consume: a whitespace-separated word-list loader and a penalty
weights-file loader, loaded concurrently via golang.org/x/sync/errgroup.

Grounded on aaw-levtrie/examples/typeahead/typeahead.go's
bufio.Scanner-based file loading, and on penalty.Load for the weights
format. Duplicate words are tolerated in the source file and deduplicated
here using the adapted set.UnorderedSet.
*/
package dictionary

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/LDAP/parallel-levenshtein/penalty"
	"github.com/LDAP/parallel-levenshtein/set"
	"github.com/LDAP/parallel-levenshtein/word"
)

// Load reads one whitespace-separated token per word from r, validates
// each as a word.Word, and deduplicates using an UnorderedSet. Duplicate
// tokens and malformed words (bytes outside (0,128)) are tolerated: the
// malformed ones are simply skipped, matching the "tolerant reader"
// stance spec.md reserves for this external collaborator.
//
// Complexity: O(total bytes in r)
func Load(r io.Reader) ([]word.Word, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	seen := set.NewUnorderedSet()
	var words []word.Word
	for scanner.Scan() {
		tok := scanner.Text()
		if seen.Contain(tok) {
			continue
		}
		w, err := word.New(tok)
		if err != nil {
			continue
		}
		seen.Insert(tok)
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// LoadFile opens path and delegates to Load.
func LoadFile(path string) ([]word.Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// LoadMany loads a dictionary file and a penalty weights file
// concurrently using an errgroup.Group, returning as soon as both
// succeed or propagating the first error encountered.
func LoadMany(dictPath, weightsPath string) ([]word.Word, *penalty.Model, error) {
	var (
		words  []word.Word
		model  *penalty.Model
		g      errgroup.Group
	)

	g.Go(func() error {
		w, err := LoadFile(dictPath)
		if err != nil {
			return err
		}
		words = w
		return nil
	})

	g.Go(func() error {
		f, err := os.Open(weightsPath)
		if err != nil {
			return err
		}
		defer f.Close()
		m, err := penalty.Load(f)
		if err != nil {
			return err
		}
		model = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return words, model, nil
}
