package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewWord(t *testing.T) {
	t.Parallel() // Enable parallel execution
	userID := uuid.New()

	word, err := NewWord(userID, "Hund", "dog", "der")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if word.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if word.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, word.UserID)
	}

	if word.Lemma != "Hund" {
		t.Errorf("Expected lemma Hund, got %s", word.Lemma)
	}

	if word.Status != WordStatusUnknown {
		t.Errorf("Expected status %s, got %s", WordStatusUnknown, word.Status)
	}

	if word.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Test invalid userID
	_, err = NewWord(uuid.Nil, "Hund", "dog", "der")
	if err != ErrEmptyWordUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyWordUserID, err)
	}

	// Test empty lemma
	_, err = NewWord(userID, "", "dog", "der")
	if err != ErrEmptyWordLemma {
		t.Errorf("Expected error %v, got %v", ErrEmptyWordLemma, err)
	}
}

func TestWordValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	validWord := Word{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Lemma:  "laufen",
		Status: WordStatusLearning,
	}

	if err := validWord.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalidWord := validWord
	invalidWord.ID = uuid.Nil
	if err := invalidWord.Validate(); err != ErrEmptyWordID {
		t.Errorf("Expected error %v, got %v", ErrEmptyWordID, err)
	}

	invalidWord = validWord
	invalidWord.UserID = uuid.Nil
	if err := invalidWord.Validate(); err != ErrEmptyWordUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyWordUserID, err)
	}

	invalidWord = validWord
	invalidWord.Lemma = ""
	if err := invalidWord.Validate(); err != ErrEmptyWordLemma {
		t.Errorf("Expected error %v, got %v", ErrEmptyWordLemma, err)
	}

	invalidWord = validWord
	invalidWord.Status = "mastered"
	if err := invalidWord.Validate(); err != ErrInvalidWordStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidWordStatus, err)
	}
}

func TestWordUpdateStatus(t *testing.T) {
	t.Parallel() // Enable parallel execution
	word := Word{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Lemma:  "Garten",
		Status: WordStatusUnknown,
	}

	origUpdatedAt := word.UpdatedAt
	if err := word.UpdateStatus(WordStatusLearning); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if word.Status != WordStatusLearning {
		t.Errorf("Expected status %s, got %s", WordStatusLearning, word.Status)
	}

	if word.UpdatedAt.Before(origUpdatedAt) {
		t.Error("Expected UpdatedAt to be updated")
	}

	for _, status := range []WordStatus{WordStatusKnown, WordStatusLearning, WordStatusUnknown} {
		if err := word.UpdateStatus(status); err != nil {
			t.Errorf("Expected no error for status %s, got %v", status, err)
		}
	}

	// Test invalid status
	if err := word.UpdateStatus("mastered"); err != ErrInvalidWordStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidWordStatus, err)
	}

	if word.Status != WordStatusUnknown {
		t.Errorf("Expected status unchanged after invalid update, got %s", word.Status)
	}
}

func TestIsValidWordStatus(t *testing.T) {
	t.Parallel() // Enable parallel execution
	for _, status := range []WordStatus{WordStatusKnown, WordStatusLearning, WordStatusUnknown} {
		if !IsValidWordStatus(status) {
			t.Errorf("Expected %s to be valid", status)
		}
	}

	for _, status := range []WordStatus{"", "mastered", "KNOWN"} {
		if IsValidWordStatus(status) {
			t.Errorf("Expected %q to be invalid", status)
		}
	}
}
