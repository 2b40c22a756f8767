package playground

import "net/http"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Blogsmith Playground</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
#log { border: 1px solid #ccc; padding: 0.5rem; min-height: 10rem; white-space: pre-wrap; font-family: monospace; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Blogsmith Playground</h1>
<form id="run">
  <input id="topic" type="text" size="50" placeholder="Blog post topic">
  <label><input id="cache" type="checkbox" checked> use cache</label>
  <button type="submit">Generate</button>
</form>
<div id="log"></div>
<script>
const log = document.getElementById("log");
document.getElementById("run").addEventListener("submit", (e) => {
  e.preventDefault();
  log.textContent = "";
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onopen = () => ws.send(JSON.stringify({
    topic: document.getElementById("topic").value,
    use_cache: document.getElementById("cache").checked,
  }));
  ws.onmessage = (m) => {
    const ev = JSON.parse(m.data);
    log.textContent += ev.type + (ev.stage ? " " + ev.stage : "") + "\n";
    if (ev.type === "run_completed" && ev.post) {
      log.textContent += "\n" + ev.post.markdown;
    }
    if (ev.type === "run_failed") {
      log.textContent += "error: " + ev.error + "\n";
    }
  };
});
</script>
</body>
</html>
`
