// Package jwt decodes bearer-token claims for the session store. The codec
// never issues tokens; it only reads what the backend signed.
package jwt
