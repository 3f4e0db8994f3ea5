// Package accounts implements account authentication and self-service: email
// and password login with separate admin and user surfaces, social login with
// account linking, registration with email confirmation, and a single-use
// password recovery flow.
//
// Logins:
//   - Login verifies a password credential against the role surface the
//     caller selects. Admin and user logins never cross over.
//   - SocialLogin resolves a provider profile through the social.Registry and
//     links it to an account. The (provider, social id) identity pair takes
//     priority over an email match; a fresh account is created when neither
//     exists.
//
// Lifecycle:
//   - Register creates an inactive account and mails a confirmation link.
//     ConfirmEmail consumes the link's hash and activates the account.
//   - ForgotPassword issues a single-use recovery ticket and mails the reset
//     link. ResetPassword consumes the ticket atomically, so concurrent
//     submissions grant exactly one password change.
//
// Storage uses Bun repositories via go-repository-bun; failures surface as
// go-errors values carrying a failing field in their metadata.
package accounts
