// Package dm holds the direct-message wire model: the message envelope, the
// closed set of payload variants behind the msg_type discriminator, and the
// formatter that turns an envelope into one transcript line.
package dm
