// Package async runs work in goroutines and tracks which piece of work is
// still wanted.
//
// Future is the eventual result of a function started with Async. Callers
// block with Await or AwaitContext, poll with IsComplete, or register a
// completion callback with Then.
//
// Generation numbers attempts so that late results can be recognised and
// dropped. Each new attempt takes Next; anything that makes outstanding
// attempts obsolete (a newer attempt, a user closing the dialog that
// started them) calls Invalidate. A completion callback applies its result
// only if IsCurrent still holds for the number it was started with:
//
//	gen := attempts.Next()
//	async.Async(ctx, req, client.CreateCheckoutSession).Then(func(s *Session, err error) {
//		if !attempts.IsCurrent(gen) {
//			return
//		}
//		// apply s or err
//	})
package async
