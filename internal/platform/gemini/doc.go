// Package gemini generates flashcards from study notes with Google's Gemini
// models through the google.golang.org/genai client.
//
// The Generator satisfies session.Generator. It renders a prompt template,
// asks the model for a JSON array of question/answer pairs and maps failures
// onto the domain error set:
//
//   - transport failures and retryable API statuses become domain.ErrUnreachable
//     once retries are exhausted
//   - other API statuses become *domain.ServiceError
//   - blocked, empty or unparseable responses become domain.ErrEmptyResult
package gemini
