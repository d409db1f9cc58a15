// Package crack provides the derivative cracking primitives of the
// audit pipeline.
//
// # Overview
//
// This package does not crack hashes exhaustively. It only squeezes
// extra plaintexts out of evidence that is already on hand:
//
//   - LM case recovery: the LM scheme uppercases the password before
//     hashing, so a cracked LM hash yields the password with its case
//     destroyed. Enumerating case variants against the NT hash of the
//     same account restores the true password.
//   - Username candidates: hash a handful of username-derived guesses
//     and compare them to the account's NT hash.
//
// Both primitives rest on NTLM, the NT hash function: MD4 over the
// UTF-16LE encoding of the password, MD4 supplied by x/crypto.
//
// # Usage
//
//	hash, _ := crack.NTLM("Summer2023")
//	pw, ok, _ := crack.RecoverLMCase(hash, "SUMMER2023")
//	// pw == "Summer2023"
package crack
