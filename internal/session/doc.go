// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package session collects traveler preferences through a short question flow.

A question session starts from optional seeded answers (time bucket, budget,
themes) and the current anchor context, and asks three questions tailored to
what is still unknown. Each answer or step back produces a new Record; a
Record is never modified after it has been stored.

# Records

A Record holds only what is needed to resume a session:

  - the session id and the generated questions with their answers
  - the step pointer (index of the current question)
  - the seeded answers
  - a version counter and the creation and update timestamps

Stores replace a record only when the stored version is the one the
transition started from, so two concurrent answers to the same question
cannot both advance the session. The loser receives ErrConflict.

# Stores

Two stores are available, selected by session.store:

  - memory: a TTL cache, lost on restart (default)
  - badger: BadgerDB entries with a TTL, durable across restarts

Both expire idle sessions after session.ttl (default 30 minutes); every
transition refreshes the TTL.

# Deriving Preferences

Once every question is answered, Preferences turns the record into a
recommendation request. Seeded values are used as-is. Missing values are
derived from keywords in the answers (English, Spanish and Catalan), and
the question and answer pairs are passed along as natural_input for the
judge.
*/
package session
