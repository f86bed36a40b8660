package constants

// facegate response codes
// these consist of 4 digit numbers
//
// the 1st 3 are randomly generated but represent specific scenarios
// 4th indicates if the response requires the client to restart the capture
// flow. 0 means it does not, 1 means it does.

var SESSION_NOT_FOUND uint = 4041            // no session with that id, start a new one
var SESSION_EXPIRED uint = 4101              // session timed out, start a new one
var CHALLENGE_TIMEOUT uint = 4111            // the active challenge timed out
var CHALLENGE_SEQUENCE_MISMATCH uint = 4221  // submitted challenge order differs from the assigned one
var NO_FACE_DETECTED uint = 4230             // keep the face in frame and resubmit
var MAX_RETRIES_EXCEEDED uint = 4241         // retry budget exhausted, start a new session
var SPOOF_SUSPECTED uint = 4251              // baseline failed the anti-spoof gate
var SESSION_CAPACITY_REACHED uint = 5031     // service at its outstanding-session cap
var DETECTOR_UNAVAILABLE uint = 5030         // transient, resubmit the same frame
var VERDICT_TOKEN_ALREADY_USED uint = 4091   // verdict token was already redeemed

var AVAILABLE_CHALLENGE_TYPES = []string{"smile", "turn_left", "turn_right"}

var SUPPORT_EMAIL = "help@facegate.io"
