package reconstruct

import "errors"

// ErrModelTimeout is returned when the model call exceeded its budget
// or was rate-limited past it.
var ErrModelTimeout = errors.New("reconstruct: model call timed out")

// ErrModelRefused is returned when the provider declined to answer
// (content policy, overload, or any other non-auth rejection).
var ErrModelRefused = errors.New("reconstruct: model refused the request")

// ErrModelAuth is returned when the provider rejected the credential.
var ErrModelAuth = errors.New("reconstruct: model authentication failed")

// ErrMalformedOutput is returned when the model reply could not be
// normalized into a parseable HTML document.
var ErrMalformedOutput = errors.New("reconstruct: model output is not an html document")
