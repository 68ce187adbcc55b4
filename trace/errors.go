package trace

// This file names the non-fatal error taxonomy this package relies on.
// None of these ever propagate to the host as a diagnostic bug report —
// this is an extraction tool, not a bug checker, so every one of them
// degrades to "nothing interesting happened" behavior rather than a
// failure:
//
//   - configuration absent or unreadable: LoadConfig returns an error the
//     caller logs (see Open), and an empty Config that careFunction reads
//     as "track any typed return".
//   - randomness source unavailable: randomUint32 falls back to a
//     time-seeded source and logs once, never returns an error.
//   - value too wide to concretize: host.Value.ConcreteInt reports
//     ok=false and printValue falls through to symbolic rendering.
//   - unrecognized type tag: printValue's bounds check on typePrefix
//     simply stops after the guard.
//   - host-state absence (stale frame, missing row at flush): callerEnd
//     returns the state unchanged when the frame row or its entry
//     snapshot is missing, and skips any entry whose getReturnSite
//     lookup reports ok=false — "nothing to emit" is a legitimate
//     outcome, not an error.
