package plan

// Package plan deterministically builds the argument vectors and
// configuration payloads for both pipeline stages. Builders are pure
// functions over the request, descriptor, and resolved encoding plan;
// arguments stay primitive tokens so user-supplied titles and URLs can
// never be shell-interpreted.
