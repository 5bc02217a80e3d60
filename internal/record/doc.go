// Package record defines the durable records of the job tracker and their
// wire encoding.
//
// Every record is stored under a fixed key as RFC 8785 canonical JSON:
//
//	jnt_test_states  {"apply-tab":false,...}             checklist flags
//	jnt_preferences  {"emailNotifications":true,...}     user preferences
//	jnt_jobs         [...]                                job list
//	jnt_digest       {"entries":[...],"generatedOn":...}  daily digest
//
// Canonical encoding keeps stored bytes stable across saves: keys are sorted
// by UTF-16 code units, strings are NFC normalized, HTML characters are not
// escaped, and floats are rejected (all numeric fields are integers).
//
// Decoding is the responsibility of the owning package (checklist, prefs,
// digest) because each applies its own defaulting rules.
package record
