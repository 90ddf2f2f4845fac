// Package password turns plaintext passwords into storable, verifiable,
// upgradeable credentials and judges their quality against a configurable
// policy.
//
// # Hashing
//
// Hashes are argon2id in the self-describing PHC string format, so every
// stored credential carries its own algorithm, version, cost parameters, and
// salt:
//
//	engine, err := password.NewWithDefaults()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	hash, err := engine.Hash("correct horse battery staple")
//	ok, err := engine.Verify("correct horse battery staple", hash) // true, nil
//
// Verification distinguishes a wrong password (false, nil) from a stored
// hash that cannot be read (ErrInvalidHashFormat). The latter means the
// credential needs a reset; retrying under another algorithm is never done.
//
// # Upgrade on login
//
// NeedsRehash enables transparent parameter upgrades: check it after a
// successful Verify and rehash the plaintext while it is still available:
//
//	ok, _ := engine.Verify(input, stored)
//	if ok {
//		if upgrade, _ := engine.NeedsRehash(stored); upgrade {
//			stored, _ = engine.Hash(input)
//			// persist the new hash
//		}
//	}
//
// # Validation
//
// Validate runs every policy check and reports all failures together rather
// than stopping at the first, so callers can render complete feedback. A
// policy violation is never an error; the Result enumerates issues,
// suggestions, a five-level strength rating, and a rough crack-time display
// string:
//
//	result := engine.Validate(input, username, email, previousHashes)
//	if !result.IsValid {
//		for _, issue := range result.Issues {
//			fmt.Println(issue.Message())
//		}
//	}
//
// Reuse against password history is checked by verifying the candidate
// against each stored hash; plaintext history is never kept.
package password
