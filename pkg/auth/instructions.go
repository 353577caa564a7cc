package auth

import "io"

// WriteCookieGuide explains where to find the two cookies a session needs
func WriteCookieGuide(w io.Writer) {
	_, _ = io.WriteString(w, `Instagram stories need a logged-in session. To copy one from a browser:

  1. Log in at https://www.instagram.com
  2. Open developer tools (F12) and go to Application > Cookies (Chrome)
     or Storage > Cookies (Firefox) for https://www.instagram.com
  3. Copy the values of:
       sessionid   long string containing %3A
       csrftoken   32 characters

The cookies grant full access to the account. Prefer a secondary account.

`)
}
