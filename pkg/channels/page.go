package channels

// widgetPageHTML is parsed with html/template; .Title is the only field.
var widgetPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>
:root{
  --bg:#f6f7fb;--panel:#ffffff;--border:#e3e5ee;--accent:#e4572e;--accent-dark:#c2411d;
  --text:#1f2330;--muted:#737a8c;--user-bg:#e4572e;--bot-bg:#f1f2f7;--badge:#16a34a;
  --radius:12px;
}
*{box-sizing:border-box;margin:0;padding:0}
html,body{height:100%}
body{font-family:system-ui,-apple-system,'Segoe UI',sans-serif;background:var(--bg);color:var(--text);display:flex;justify-content:center}
.layout{display:flex;gap:20px;width:100%;max-width:1100px;padding:20px;height:100%}
.chat{flex:1;display:flex;flex-direction:column;background:var(--panel);border:1px solid var(--border);border-radius:var(--radius);overflow:hidden}
.chat header{padding:14px 20px;border-bottom:1px solid var(--border);font-weight:600}
#chat-messages{flex:1;overflow-y:auto;padding:20px;display:flex;flex-direction:column;gap:12px}
.message{display:flex}
.message.user{justify-content:flex-end}
.message-content{max-width:75%;padding:10px 14px;border-radius:var(--radius);line-height:1.55;font-size:14px;word-wrap:break-word}
.message.user .message-content{background:var(--user-bg);color:#fff;white-space:pre-wrap}
.message.bot .message-content{background:var(--bot-bg)}
.message-content img{max-width:100%;border-radius:8px}
.message-content a{color:var(--accent-dark)}
.loading{width:36px;height:10px;background:radial-gradient(circle closest-side,var(--muted) 90%,transparent) 0 50%/12px 10px repeat-x;animation:dots 1s infinite linear}
@keyframes dots{to{background-position:12px 50%}}
.product-card{position:relative;background:#fff;border:1px solid var(--border);border-radius:10px;padding:12px;margin:10px 0}
.product-card h4{margin:8px 0 4px}
.product-image{width:100%;max-height:220px;object-fit:cover}
.product-thumbnails{display:flex;gap:6px;margin-top:6px;align-items:center}
.product-thumbnail{width:56px;height:56px;object-fit:cover}
.more-images{font-size:12px;color:var(--muted)}
.product-price{font-weight:600;color:var(--accent-dark)}
.discount-badge{position:absolute;top:10px;right:10px;background:var(--badge);color:#fff;font-size:12px;font-weight:600;padding:2px 8px;border-radius:999px}
.product-attributes{display:flex;flex-wrap:wrap;gap:6px;margin-top:6px}
.product-attributes span{font-size:12px;background:var(--bot-bg);border:1px solid var(--border);border-radius:999px;padding:2px 8px}
.image-gallery{display:grid;grid-template-columns:repeat(auto-fill,minmax(120px,1fr));gap:8px;margin-top:10px}
.gallery-item img{width:100%;height:110px;object-fit:cover}
.gallery-caption{font-size:12px;color:var(--muted);margin-top:2px}
.input-area{display:flex;gap:8px;padding:14px;border-top:1px solid var(--border)}
#message-input{flex:1;padding:10px 12px;border:1px solid var(--border);border-radius:10px;font:inherit;outline:none}
#message-input:focus{border-color:var(--accent)}
#send-button{padding:0 18px;border:none;border-radius:10px;background:var(--accent);color:#fff;font-weight:600;cursor:pointer}
#send-button:hover{background:var(--accent-dark)}
.orders{width:280px;background:var(--panel);border:1px solid var(--border);border-radius:var(--radius);padding:16px;overflow-y:auto}
.orders h3{font-size:15px;margin-bottom:10px}
.order-item{border-bottom:1px solid var(--border);padding:8px 0;font-size:13px}
.order-id{font-weight:600}
.order-status{color:var(--muted)}
.notice{position:fixed;bottom:20px;left:50%;transform:translateX(-50%);background:var(--text);color:#fff;padding:8px 14px;border-radius:8px;font-size:13px;opacity:0;transition:opacity .2s}
.notice.show{opacity:.9}
@media(max-width:760px){.orders{display:none}.layout{padding:0}.chat{border-radius:0}}
</style>
</head>
<body>
<div class="layout">
  <section class="chat">
    <header>{{.Title}}</header>
    <div id="chat-messages"></div>
    <div class="input-area">
      <input id="message-input" type="text" placeholder="Ask about products or your orders..." aria-label="Chat message input" autocomplete="off">
      <button id="send-button" aria-label="Send message">Send</button>
    </div>
  </section>
  <aside class="orders">
    <h3>Your orders</h3>
    <div id="orders-list"><p class="order-status">No orders yet.</p></div>
  </aside>
</div>
<div id="notice" class="notice"></div>
<script>
(function(){
  var messagesEl=document.getElementById("chat-messages"),
      ordersEl=document.getElementById("orders-list"),
      input=document.getElementById("message-input"),
      btn=document.getElementById("send-button"),
      notice=document.getElementById("notice");
  var ws=null,nodes={},seq=0,opened=false;

  function setCookie(id){
    document.cookie="shopchat_uid="+encodeURIComponent(id)+"; path=/; max-age=31536000; samesite=lax";
  }
  function flash(text){
    notice.textContent=text;notice.className="notice show";
    setTimeout(function(){notice.className="notice"},3000);
  }
  function apply(ev,ns){
    var key=ns+ev.id;
    switch(ev.type){
    case "append":
      var row=document.createElement("div");
      row.className="message "+ev.role;
      var body=document.createElement("div");
      body.className="message-content";
      body.innerHTML=ev.html||"";
      row.appendChild(body);messagesEl.appendChild(row);
      nodes[key]=row;
      messagesEl.scrollTop=messagesEl.scrollHeight;
      break;
    case "remove":
      if(nodes[key]){nodes[key].remove();delete nodes[key]}
      break;
    case "orders":
      if(ev.html){ordersEl.innerHTML=ev.html}
      break;
    case "session":
      setCookie(ev.user_id);
      break;
    case "busy":
      flash("Still answering your last message...");
      break;
    case "error":
      if(ev.error){flash(ev.error)}
      break;
    }
  }
  function connect(){
    var proto=location.protocol==="https:"?"wss://":"ws://";
    ws=new WebSocket(proto+location.host+"/ws"+(opened?"?resume=1":""));
    ws.onopen=function(){opened=true;messagesEl.innerHTML="";nodes={}};
    ws.onmessage=function(m){try{apply(JSON.parse(m.data),"w")}catch(e){}};
    ws.onclose=function(){ws=null;setTimeout(connect,2000)};
  }
  function loadOrders(){
    fetch("/api/orders",{credentials:"same-origin"})
      .then(function(r){return r.status===200?r.text():""})
      .then(function(h){if(h){ordersEl.innerHTML=h}})
      .catch(function(){});
  }
  function send(){
    var text=input.value.trim();
    if(!text){return}
    input.value="";
    if(ws&&ws.readyState===1){ws.send(JSON.stringify({message:text}));return}
    var ns="h"+(seq++)+"-";
    fetch("/api/send",{method:"POST",credentials:"same-origin",headers:{"Content-Type":"application/json"},body:JSON.stringify({message:text})})
      .then(function(r){return r.json()})
      .then(function(d){(d.events||[]).forEach(function(ev){apply(ev,ns)})})
      .catch(function(){flash("Sorry, an error occurred. Please try again later.")});
  }

  btn.onclick=send;
  input.onkeydown=function(e){if(e.key==="Enter"){e.preventDefault();send()}};
  if(window.WebSocket){connect()}else{loadOrders()}
  input.focus();
})();
</script>
</body>
</html>`
