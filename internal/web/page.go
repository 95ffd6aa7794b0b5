package web

import (
	"html/template"
	"log/slog"
	"net/http"
)

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, struct{ Title string }{s.title}); err != nil {
		s.logger.Error("failed to render page", slog.String("error", err.Error()))
	}
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  * { box-sizing: border-box; margin: 0; padding: 0; }
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: #1a1b26; color: #c0caf5; height: 100vh; display: flex; flex-direction: column; }
  header { padding: 16px 24px; background: #24283b; border-bottom: 1px solid #414868; }
  header h1 { font-size: 18px; font-weight: 600; }
  #messages { flex: 1; overflow-y: auto; padding: 24px; display: flex; flex-direction: column; gap: 12px; }
  .row { display: flex; align-items: flex-end; gap: 8px; }
  .row.user { flex-direction: row-reverse; }
  .avatar { width: 32px; height: 32px; border-radius: 50%; display: flex; align-items: center; justify-content: center; font-size: 13px; font-weight: 600; flex-shrink: 0; }
  .row.user .avatar { background: #7aa2f7; color: #1a1b26; }
  .row.bot .avatar { background: #9ece6a; color: #1a1b26; }
  .bubble { max-width: 70%; padding: 12px 16px; border-radius: 12px; line-height: 1.5; white-space: pre-wrap; word-wrap: break-word; }
  .row.user .bubble { background: #3d59a1; color: #fff; }
  .row.bot .bubble { background: #24283b; }
  .typing span { display: inline-block; width: 8px; height: 8px; margin: 0 2px; border-radius: 50%; background: #565f89; animation: blink 1.2s infinite ease-in-out; }
  .typing span:nth-child(2) { animation-delay: 0.2s; }
  .typing span:nth-child(3) { animation-delay: 0.4s; }
  @keyframes blink { 0%, 80%, 100% { opacity: 0.3; transform: translateY(0); } 40% { opacity: 1; transform: translateY(-4px); } }
  #input-area { padding: 16px 24px; background: #24283b; border-top: 1px solid #414868; display: flex; gap: 12px; }
  #input { flex: 1; padding: 12px 16px; border: 1px solid #414868; border-radius: 8px; background: #1a1b26; color: #c0caf5; font-size: 15px; outline: none; }
  #input:focus { border-color: #7aa2f7; }
  #send { padding: 12px 24px; border: none; border-radius: 8px; background: #7aa2f7; color: #1a1b26; font-size: 15px; cursor: pointer; }
  #send:disabled, #input:disabled { opacity: 0.5; cursor: not-allowed; }
</style>
</head>
<body>
<header><h1>{{.Title}}</h1></header>
<div id="messages"></div>
<div id="input-area">
  <input type="text" id="input" placeholder="Type your message..." autocomplete="off" />
  <button id="send">Send</button>
</div>
<script>
(function() {
  const messagesEl = document.getElementById('messages');
  const inputEl = document.getElementById('input');
  const sendBtn = document.getElementById('send');
  let ws;
  let sending = false;

  function connect() {
    const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
    ws = new WebSocket(proto + '//' + location.host + '/ws');
    ws.onclose = () => setTimeout(connect, 2000);
    ws.onmessage = (e) => {
      const msg = JSON.parse(e.data);
      if (msg.type === 'transcript') render(msg.turns || [], msg.sending);
    };
  }

  function render(turns, isSending) {
    sending = isSending;
    messagesEl.replaceChildren();
    for (const turn of turns) {
      const row = document.createElement('div');
      row.className = 'row ' + turn.sender;
      const avatar = document.createElement('div');
      avatar.className = 'avatar';
      avatar.textContent = turn.sender === 'user' ? 'You' : 'AI';
      const bubble = document.createElement('div');
      bubble.className = 'bubble';
      if (turn.pending) {
        bubble.classList.add('typing');
        bubble.innerHTML = '<span></span><span></span><span></span>';
      } else {
        bubble.textContent = turn.text;
      }
      row.append(avatar, bubble);
      messagesEl.appendChild(row);
    }
    sendBtn.disabled = sending;
    inputEl.disabled = sending;
    if (!sending) inputEl.focus();
    messagesEl.scrollTop = messagesEl.scrollHeight;
  }

  function send() {
    const text = inputEl.value;
    if (sending || !text.trim() || !ws || ws.readyState !== WebSocket.OPEN) return;
    ws.send(JSON.stringify({ type: 'submit', text: text }));
    inputEl.value = '';
  }

  sendBtn.addEventListener('click', send);
  inputEl.addEventListener('keydown', (e) => { if (e.key === 'Enter') send(); });
  connect();
})();
</script>
</body>
</html>`
