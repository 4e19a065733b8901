// Package decrypt selects how a protected document is recovered.
//
// A Selector runs a priority-ordered list of strategies (the vendor's native
// library, the vendor's decryption service) and optionally an identity copy as
// the last resort. Every failure is converted into an Outcome; nothing
// propagates past Selector.Decrypt.
package decrypt
