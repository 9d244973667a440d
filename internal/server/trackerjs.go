package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/landing"
	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/tracker"
	"github.com/validateiq/validateiq/internal/waitlist"
)

// scriptConfig is embedded into /vq.js.
type scriptConfig struct {
	Cap        int               `json:"cap"`
	Milestones []int             `json:"milestones"`
	Source     string            `json:"source"`
	Messages   map[string]string `json:"messages"`
}

func (s *Server) handleTrackerJS(w http.ResponseWriter, r *http.Request) {
	// Determine server URL from request
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	serverURL := fmt.Sprintf("%s://%s", scheme, r.Host)

	script, err := GenerateTrackerScript(serverURL, s.waitlistCap())
	if err != nil {
		s.internalError(w, "failed to generate tracker script", err)
		return
	}

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=60")
	if _, err := w.Write([]byte(script)); err != nil {
		s.log.Debug("failed to write tracker script", logger.Error(err))
	}
}

// GenerateTrackerScript returns the browser tracker bound to serverURL.
func GenerateTrackerScript(serverURL string, cap int) (string, error) {
	if cap <= 0 {
		cap = landing.DefaultCap
	}
	cfg, err := json.Marshal(scriptConfig{
		Cap:        cap,
		Milestones: tracker.Milestones,
		Source:     waitlist.SignupSource,
		Messages: map[string]string{
			"email":    waitlist.MsgEmailRequired,
			"feature":  waitlist.MsgFeatureRequired,
			"session":  waitlist.MsgSessionNotReady,
			"rejected": api.DefaultSignupError,
			"fallback": waitlist.MsgSubmitFailed,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode script config: %w", err)
	}
	// The URL comes from the Host header, so it is emitted as a JSON string literal.
	url, err := json.Marshal(serverURL)
	if err != nil {
		return "", fmt.Errorf("failed to encode server url: %w", err)
	}

	return fmt.Sprintf(trackerScript, url, cfg), nil
}

const trackerScript = `(function(){
  var S=%s;
  var C=%s;
  var A=S+'/api/analytics';

  var st={vid:null,pvid:null,load:Date.now(),maxDepth:0,milestone:0,events:0};
  var q=Promise.resolve();

  function post(url,body){
    return fetch(url,{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify(body)})
      .then(function(r){
        return r.json().catch(function(){return {};}).then(function(d){
          if(!r.ok){
            var err=new Error(d.detail||'');
            err.status=r.status;
            throw err;
          }
          return d;
        });
      });
  }

  // Events go out one at a time in call order.
  function track(type,o){
    if(!st.vid)return;
    o=o||{};
    var body={
      event_type:type,
      event_category:o.category,
      element_id:o.elementId,
      element_text:o.elementText,
      section:o.section,
      properties:o.properties,
      scroll_position:o.scroll!==undefined?o.scroll:Math.round(window.scrollY),
      time_since_page_load:Date.now()-st.load
    };
    var url=A+'/event?visitor_id='+st.vid+'&page_view_id='+st.pvid;
    st.events++;
    q=q.then(function(){return post(url,body);}).catch(function(e){console.warn('vq: event failed',e);});
  }

  function beacon(){
    if(!st.pvid)return;
    var data=JSON.stringify({
      page_view_id:st.pvid,
      time_on_page_seconds:Math.floor((Date.now()-st.load)/1000),
      max_scroll_depth:st.maxDepth,
      events_count:st.events
    });
    if(navigator.sendBeacon)navigator.sendBeacon(A+'/beacon',data);
  }

  function depth(){
    var h=document.documentElement.scrollHeight-window.innerHeight;
    if(h<=0)return 100;
    return Math.min(100,Math.max(0,Math.round(window.scrollY/h*100)));
  }

  function onScroll(){
    var d=depth();
    if(d<=st.maxDepth)return;
    st.maxDepth=d;
    C.milestones.forEach(function(m){
      if(d>=m&&st.milestone<m){
        st.milestone=m;
        track('scroll_milestone',{category:'scroll',properties:{depth:m}});
      }
    });
  }

  function observeSections(){
    if(!('IntersectionObserver' in window))return;
    var seen={};
    document.querySelectorAll('[data-vq-section]').forEach(function(el){
      var id=el.dataset.vqSection;
      var t=parseFloat(el.dataset.vqThreshold||'0.1');
      var io=new IntersectionObserver(function(entries){
        entries.forEach(function(e){
          if(!e.isIntersecting)return;
          io.disconnect();
          el.classList.add('is-visible');
          if(el.hasAttribute('data-vq-track')&&!seen[id]){
            seen[id]=true;
            track('section_view',{category:'engagement',section:id});
          }
        });
      },{threshold:t});
      io.observe(el);
    });
  }

  function bindCTAs(){
    document.querySelectorAll('[data-vq-cta]').forEach(function(el){
      el.addEventListener('click',function(ev){
        track('cta_click',{category:'navigation',elementText:el.textContent.trim(),properties:{position:el.dataset.vqCta}});
        var target=document.getElementById('waitlist');
        if(target){
          ev.preventDefault();
          target.scrollIntoView({behavior:'smooth'});
        }
      });
    });
    document.querySelectorAll('[data-vq-feature]').forEach(function(el){
      el.addEventListener('mouseenter',function(){
        track('feature_card_hover',{category:'engagement',section:'features',properties:{feature_name:el.dataset.vqFeature}});
      });
    });
  }

  function setCount(count,spots){
    if(spots===undefined||spots===null)spots=Math.max(C.cap-count,0);
    document.querySelectorAll('[data-vq-count]').forEach(function(el){el.textContent=count+' signed up';});
    document.querySelectorAll('[data-vq-spots-left]').forEach(function(el){el.textContent=spots+' spots left';});
    document.querySelectorAll('.progress-bar').forEach(function(el){
      el.style.width=Math.min(Math.floor(count*100/C.cap),100)+'%%';
    });
  }

  function refreshCount(){
    fetch(S+'/api/signups/count').then(function(r){return r.json();})
      .then(function(d){setCount(d.count,d.spots_left);})
      .catch(function(e){console.warn('vq: count failed',e);});
  }

  function bindForm(){
    var form=document.querySelector('[data-vq-form]');
    if(!form)return;
    var errEl=form.querySelector('[data-vq-error]');
    var btn=form.querySelector('button[type=submit]');
    var focused=false,busy=false;

    function showError(msg){
      if(!errEl)return;
      errEl.textContent=msg;
      errEl.hidden=!msg;
    }

    form.addEventListener('focusin',function(){
      if(focused)return;
      focused=true;
      track('form_focus',{category:'form',section:'waitlist_form'});
    });

    ['email','most_wanted_feature','marketing_consent'].forEach(function(name){
      var f=form.elements[name];
      if(!f)return;
      f.addEventListener('blur',function(){
        var has=f.type==='checkbox'?f.checked:!!f.value.trim();
        track('form_field_blur',{category:'form',section:'waitlist_form',properties:{field_name:name==='most_wanted_feature'?'feature':name==='marketing_consent'?'consent':name,has_value:has}});
      });
    });

    form.addEventListener('submit',function(ev){
      ev.preventDefault();
      if(busy)return;
      showError('');

      var email=form.elements.email.value.trim();
      var feature=form.elements.most_wanted_feature.value;
      var consent=form.elements.marketing_consent.checked;
      if(!email){showError(C.messages.email);return;}
      if(!feature){showError(C.messages.feature);return;}
      if(!st.vid){showError(C.messages.session);return;}

      busy=true;
      if(btn)btn.disabled=true;

      post(S+'/api/signups/',{
        visitor_id:st.vid,
        email:email,
        most_wanted_feature:feature,
        marketing_consent:consent,
        signup_source:C.source,
        time_to_signup_seconds:Math.floor((Date.now()-st.load)/1000)
      }).then(function(d){
        track('form_submit_success',{category:'form',section:'waitlist_form',properties:{feature_selected:feature}});
        var tpl=document.getElementById('vq-success');
        var card=form.closest('.waitlist-card');
        if(tpl&&card){
          var node=tpl.content.cloneNode(true);
          var pos=node.querySelector('[data-vq-position]');
          if(pos)pos.textContent='#'+d.position;
          var spots=node.querySelector('[data-vq-spots]');
          if(spots){
            if(d.spots_left>0)spots.textContent=d.spots_left;
            else spots.parentNode.remove();
          }
          card.replaceWith(node);
        }
        refreshCount();
      }).catch(function(e){
        track('form_submit_error',{category:'form',section:'waitlist_form',properties:{feature_selected:feature}});
        showError(e.message||(e.status?C.messages.rejected:C.messages.fallback));
        busy=false;
        if(btn)btn.disabled=false;
      });
    });
  }

  function init(){
    var p=new URLSearchParams(window.location.search);
    var body={
      referrer:document.referrer||undefined,
      utm_source:p.get('utm_source')||undefined,
      utm_medium:p.get('utm_medium')||undefined,
      utm_campaign:p.get('utm_campaign')||undefined,
      utm_content:p.get('utm_content')||undefined,
      screen_width:window.screen.width,
      screen_height:window.screen.height,
      viewport_width:window.innerWidth,
      viewport_height:window.innerHeight
    };
    post(A+'/init',body).then(function(d){
      st.vid=d.visitor_id;
      st.pvid=d.page_view_id;
    }).catch(function(e){console.error('vq: init failed',e);});
  }

  window.addEventListener('scroll',onScroll,{passive:true});
  window.addEventListener('beforeunload',beacon);
  document.addEventListener('visibilitychange',function(){
    if(document.visibilityState==='hidden'){
      beacon();
      track('tab_hidden',{category:'engagement'});
    }else{
      track('tab_visible',{category:'engagement'});
    }
  });

  init();
  observeSections();
  bindCTAs();
  bindForm();
  refreshCount();
})();`
