package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Bare page shells so the gate's redirect targets exist. The console UI is a
// separate frontend; these only cover direct navigation.

const loginPageHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Admin Console</title></head>
<body>
<h1>Sign in</h1>
<form id="login">
  <input name="loginId" placeholder="login id" autocomplete="username">
  <input name="password" type="password" placeholder="password" autocomplete="current-password">
  <button type="submit">Sign in</button>
</form>
<script>
document.getElementById('login').addEventListener('submit', async (e) => {
  e.preventDefault();
  const form = new FormData(e.target);
  const res = await fetch('/api/auth/login', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({loginId: form.get('loginId'), password: form.get('password')}),
  });
  if (!res.ok) { alert('login failed'); return; }
  const next = new URLSearchParams(location.search).get('next');
  location.href = next || '/admin/leaderboard';
});
</script>
</body>
</html>`

const dashboardPageHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Admin Console</title></head>
<body>
<h1>Admin Console</h1>
<nav>
  <a href="/admin/leaderboard/histories">Histories</a>
  <a href="/admin/leaderboard/principals">Principals</a>
  <a href="/admin/leaderboard/school-info">School info</a>
</nav>
</body>
</html>`

func (a *App) LoginPage(c echo.Context) error {
	return c.HTML(http.StatusOK, loginPageHTML)
}

func (a *App) DashboardPage(c echo.Context) error {
	return c.HTML(http.StatusOK, dashboardPageHTML)
}
