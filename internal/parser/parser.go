// Package parser extracts question drafts from markdown study files.
// A question is a block of B:/P:/Q:/A: prefixed sections separated
// from the next question by a --- line:
//
//	B: Baby Rudin
//	P: 42
//	Q: State the Bolzano-Weierstrass theorem.
//	A: Every bounded sequence in R^n has a convergent subsequence.
//	---
//
// Q: and A: sections may span multiple lines; everything up to the next
// prefix or separator belongs to the section.
package parser

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rsheridan/drillbook/internal/domain"
)

const (
	bookPrefix     = "B:"
	pagePrefix     = "P:"
	questionPrefix = "Q:"
	answerPrefix   = "A:"
)

type state int

const (
	seeking state = iota
	readingBook
	readingPage
	readingQuestion
	readingAnswer
)

// ParseFile reads a file from the given path and extracts all question drafts.
func ParseFile(path string) ([]domain.Question, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all question drafts. Drafts
// are not validated here; the importer rejects incomplete ones.
func Parse(r io.Reader) ([]domain.Question, error) {
	scanner := bufio.NewScanner(r)
	var questions []domain.Question
	var current domain.Question
	var block []string
	currentState := seeking

	closeBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch currentState {
		case readingBook:
			current.Book = strings.TrimSpace(content)
		case readingPage:
			current.Page, _ = strconv.Atoi(strings.TrimSpace(content))
		case readingQuestion:
			current.Content = content
		case readingAnswer:
			current.Answer = content
		}
		block = nil
	}

	finishQuestion := func() {
		closeBlock()
		if current.Content != "" {
			questions = append(questions, current)
		}
		current = domain.Question{}
		currentState = seeking
	}

	startBlock := func(next state, line, prefix string) {
		closeBlock()
		currentState = next
		content := strings.TrimPrefix(line, prefix)
		block = append(block, strings.TrimPrefix(content, " "))
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "---":
			finishQuestion()
		case strings.HasPrefix(line, bookPrefix):
			if currentState != seeking { // a new B: always starts a new question
				finishQuestion()
			}
			startBlock(readingBook, line, bookPrefix)
		case strings.HasPrefix(line, pagePrefix):
			startBlock(readingPage, line, pagePrefix)
		case strings.HasPrefix(line, questionPrefix):
			startBlock(readingQuestion, line, questionPrefix)
		case strings.HasPrefix(line, answerPrefix):
			startBlock(readingAnswer, line, answerPrefix)
		default:
			if currentState != seeking {
				block = append(block, line)
			}
		}
	}

	finishQuestion() // finish the very last question in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}

// Fingerprint returns a stable SHA-256 hex digest of a question's content
// fields, used to skip duplicates on import. Fields are lowercased, outer
// whitespace trimmed and line endings normalized before hashing, so
// cosmetic edits do not produce a new identity.
func Fingerprint(q domain.Question) string {
	normalize := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	joined := strings.Join([]string{
		normalize(q.Book),
		strconv.Itoa(q.Page),
		normalize(q.Content),
		normalize(q.Answer),
	}, "\n")
	return fmt.Sprintf("%x", sha256.Sum256([]byte(joined)))
}
