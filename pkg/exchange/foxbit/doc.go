// Package foxbit implements the Exchange interface for the Foxbit spot
// venue. Requests are signed with an HMAC-SHA256 pre-image that is
// sensitive to parameter insertion order, so all request parameters travel
// through core.ParamList rather than plain maps.
package foxbit
